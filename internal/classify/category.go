package classify

import (
	"strings"

	"github.com/JaimeStill/noshow/pkg/canon"
)

var (
	schedulingPrefixes = []string{"erro de agendamento"}
	equipmentPhrases   = []string{"falta de equipamento", "perda/extravio"}
	technicianPhrases  = []string{"no-show tecnico", "ocorrencia com tecnico"}
)

// Categorize maps a detected reason and its label to an outcome category.
// Scheduling-error and equipment reason families win. A technician reason
// stays with the technician even under a correct mask; only a special
// trigger overrides it. Otherwise a correct mask or a special trigger counts
// against the client and everything else against the technician.
func Categorize(reason string, label Label) Category {
	r := canon.String(reason)

	for _, p := range schedulingPrefixes {
		if strings.HasPrefix(r, p) {
			return CategorySchedulingError
		}
	}
	for _, p := range equipmentPhrases {
		if strings.Contains(r, p) {
			return CategoryMissingEquipment
		}
	}

	if label != LabelClientNoShow {
		for _, p := range technicianPhrases {
			if strings.Contains(r, p) {
				return CategoryTechnicianNoShow
			}
		}
	}

	switch label {
	case LabelClientNoShow, LabelMaskCorrect:
		return CategoryClientNoShow
	default:
		return CategoryTechnicianNoShow
	}
}
