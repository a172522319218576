package api

import (
	"github.com/JaimeStill/noshow/internal/batches"
	"github.com/JaimeStill/noshow/internal/extrarules"
	"github.com/JaimeStill/noshow/internal/notes"
	"github.com/JaimeStill/noshow/internal/reviews"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	ExtraRules extrarules.System
	Batches    batches.System
	Notes      notes.System
	Reviews    reviews.System
}

// NewDomain creates all domain systems from the API runtime. Every system
// classifies against the same active registry.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	extraRulesSystem := extrarules.New(
		db,
		runtime.Rules,
		runtime.Settings,
		runtime.Logger,
		runtime.Pagination,
	)

	notesSystem := notes.New(
		db,
		runtime.Rules,
		runtime.Settings,
		runtime.Logger,
		runtime.Pagination,
	)

	batchesSystem := batches.New(
		db,
		runtime.Storage,
		runtime.Rules,
		runtime.Settings,
		runtime.Columns,
		runtime.Logger,
		runtime.Pagination,
	)

	reviewsSystem := reviews.New(
		db,
		notesSystem,
		runtime.RequireSecondPass,
		runtime.Logger,
	)

	return &Domain{
		ExtraRules: extraRulesSystem,
		Batches:    batchesSystem,
		Notes:      notesSystem,
		Reviews:    reviewsSystem,
	}
}
