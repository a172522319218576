package notes_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/JaimeStill/noshow/internal/classify"
	"github.com/JaimeStill/noshow/internal/notes"
	"github.com/JaimeStill/noshow/internal/rules"
	"github.com/JaimeStill/noshow/pkg/pagination"
)

const (
	findSQL    = `SELECT (.+) FROM public\.notes n WHERE n\.id = \$1`
	updateSQL  = `UPDATE notes SET cause = \$1`
	upsertSQL  = `INSERT INTO notes(.+)ON CONFLICT \(batch_id, row_index\) DO UPDATE`
	technician = "Agendamento cancelado. No-show Técnico. Técnico João, em 10/01 - 14h, não realizou o atendimento por motivo de chuva"
)

var noteColumns = []string{
	"id", "batch_id", "row_index", "row_key", "narrative", "trigger_field", "fields",
	"cause", "reason", "mask", "template", "label", "detail", "category", "classified_at",
}

func newSystem(t *testing.T) (notes.System, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	reg, err := rules.BuildCatalog(nil)
	if err != nil {
		t.Fatalf("BuildCatalog: %v", err)
	}

	sys := notes.New(
		db,
		rules.NewActive(reg),
		classify.Settings{DefaultCause: rules.DefaultCause, Triggers: []string{"michelin"}},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 20, MaxPageSize: 100},
	)
	return sys, mock
}

func sampleNote() notes.Note {
	return notes.Note{
		ID:           uuid.New(),
		BatchID:      uuid.New(),
		RowIndex:     0,
		RowKey:       "OS-1001",
		Narrative:    technician,
		Fields:       map[string]string{"OS": "OS-1001"},
		Cause:        rules.DefaultCause,
		Reason:       "No-show Técnico",
		Label:        classify.LabelTechnicianNoShow,
		Detail:       classify.DetailMismatch,
		Category:     classify.CategoryTechnicianNoShow,
		ClassifiedAt: time.Date(2026, 1, 10, 14, 0, 0, 0, time.UTC),
	}
}

func noteRows(items ...notes.Note) *sqlmock.Rows {
	rows := sqlmock.NewRows(noteColumns)
	for _, n := range items {
		rows.AddRow(
			n.ID.String(), n.BatchID.String(), n.RowIndex, n.RowKey, n.Narrative, n.Trigger,
			[]byte(`{"OS":"`+n.RowKey+`"}`),
			n.Cause, n.Reason, n.Mask, n.Template, string(n.Label), n.Detail, string(n.Category),
			n.ClassifiedAt,
		)
	}
	return rows
}

func TestFind(t *testing.T) {
	sys, mock := newSystem(t)
	n := sampleNote()

	mock.ExpectQuery(findSQL).WithArgs(n.ID).WillReturnRows(noteRows(n))

	got, err := sys.Find(context.Background(), n.ID)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got.BatchID != n.BatchID || got.Label != n.Label || got.Category != n.Category {
		t.Errorf("got %+v, want %+v", got, n)
	}
	if got.Fields["OS"] != "OS-1001" {
		t.Errorf("fields: got %v", got.Fields)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestFindNotFound(t *testing.T) {
	sys, mock := newSystem(t)
	id := uuid.New()

	mock.ExpectQuery(findSQL).WithArgs(id).WillReturnRows(sqlmock.NewRows(noteColumns))

	if _, err := sys.Find(context.Background(), id); !errors.Is(err, notes.ErrNotFound) {
		t.Errorf("error: got %v, want ErrNotFound", err)
	}
}

func TestFindByKey(t *testing.T) {
	sys, mock := newSystem(t)
	n := sampleNote()

	mock.ExpectQuery(`WHERE n\.batch_id = \$1 AND n\.row_key = \$2 ORDER BY n\.row_index ASC LIMIT 1 OFFSET 0`).
		WithArgs(n.BatchID, n.RowKey).
		WillReturnRows(noteRows(n))

	got, err := sys.FindByKey(context.Background(), n.BatchID, n.RowKey)
	if err != nil {
		t.Fatalf("FindByKey: %v", err)
	}
	if got.ID != n.ID {
		t.Errorf("id: got %s, want %s", got.ID, n.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestClassify(t *testing.T) {
	sys, mock := newSystem(t)
	stale := sampleNote()
	fresh := stale
	fresh.Label = classify.LabelMaskCorrect
	fresh.Detail = ""
	fresh.Category = classify.CategoryTechnicianNoShow

	mock.ExpectQuery(findSQL).WithArgs(stale.ID).WillReturnRows(noteRows(stale))
	mock.ExpectBegin()
	mock.ExpectQuery(updateSQL).
		WithArgs(
			rules.DefaultCause, "No-show Técnico", sqlmock.AnyArg(), sqlmock.AnyArg(),
			string(classify.LabelMaskCorrect), "", string(classify.CategoryTechnicianNoShow),
			stale.ID,
		).
		WillReturnRows(noteRows(fresh))
	mock.ExpectCommit()

	got, err := sys.Classify(context.Background(), stale.ID)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if got.Label != classify.LabelMaskCorrect {
		t.Errorf("label: got %s", got.Label)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestClassifyNotFound(t *testing.T) {
	sys, mock := newSystem(t)
	id := uuid.New()

	mock.ExpectQuery(findSQL).WithArgs(id).WillReturnRows(sqlmock.NewRows(noteColumns))

	if _, err := sys.Classify(context.Background(), id); !errors.Is(err, notes.ErrNotFound) {
		t.Errorf("error: got %v, want ErrNotFound", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestList(t *testing.T) {
	sys, mock := newSystem(t)
	n := sampleNote()
	label := classify.LabelTechnicianNoShow

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM public\.notes n WHERE n\.batch_id = \$1 AND n\.label = \$2`).
		WithArgs(n.BatchID, label).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`ORDER BY n\.row_index ASC LIMIT 20 OFFSET 0`).
		WithArgs(n.BatchID, label).
		WillReturnRows(noteRows(n))

	result, err := sys.List(
		context.Background(),
		pagination.PageRequest{},
		notes.Filters{BatchID: &n.BatchID, Label: &label},
	)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Total != 1 || len(result.Data) != 1 {
		t.Errorf("got total %d with %d items", result.Total, len(result.Data))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestWrite(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	batchID := uuid.New()
	rows := []classify.Row{
		{Key: "OS-1", Narrative: "texto livre", Fields: map[string]string{"OS": "OS-1"}},
		{Key: "OS-2", Narrative: "outro texto"},
	}
	results := []classify.Result{
		{Label: classify.LabelTechnicianNoShow, Detail: classify.DetailUnrecognized, Category: classify.CategoryTechnicianNoShow},
		{Label: classify.LabelClientNoShow, Category: classify.CategoryClientNoShow},
	}

	mock.ExpectBegin()
	prep := mock.ExpectPrepare(upsertSQL)
	prep.ExpectExec().
		WithArgs(batchID, 0, "OS-1", "texto livre", "", []byte(`{"OS":"OS-1"}`),
			"", "", "", "", "technician-no-show", classify.DetailUnrecognized, "technician no-show").
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().
		WithArgs(batchID, 1, "OS-2", "outro texto", "", []byte(`{}`),
			"", "", "", "", "client-no-show", "", "client no-show").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := notes.Write(context.Background(), tx, batchID, rows, results); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestWriteLengthMismatch(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}

	err = notes.Write(context.Background(), tx, uuid.New(), []classify.Row{{}}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	first := sampleNote()
	second := sampleNote()
	second.BatchID = first.BatchID
	second.RowIndex = 1
	second.RowKey = "OS-1002"

	mock.ExpectQuery(`FROM public\.notes n WHERE n\.batch_id = \$1 ORDER BY n\.row_index ASC$`).
		WithArgs(first.BatchID).
		WillReturnRows(noteRows(first, second))

	got, err := notes.Rows(context.Background(), db, first.BatchID)
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(got) != 2 || got[1].RowKey != "OS-1002" {
		t.Errorf("got %+v", got)
	}
	if row := got[0].Row(); row.Key != "OS-1001" || row.Narrative != technician {
		t.Errorf("row: got %+v", row)
	}
}
