package buyers

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vipul69-eng/leadbook/pkg/auth"
	"github.com/vipul69-eng/leadbook/pkg/db/models"
)

// importMaxRows caps one upload; larger files must be split.
const importMaxRows = 200

// csvHeaders is the required header row, in the order export writes it.
var csvHeaders = []string{
	"fullName", "email", "phone", "city", "propertyType", "bhk", "purpose",
	"budgetMin", "budgetMax", "timeline", "source", "notes", "tags", "status",
}

// RowError points at one rejected CSV data row. Row numbers count the header
// as row 1, so the first data row is row 2.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult summarizes one upload: every data row is either counted in
// Inserted or present in Errors.
type ImportResult struct {
	Inserted int        `json:"inserted"`
	Errors   []RowError `json:"errors"`
}

// ImportCSV parses the upload, validates every row, and inserts the valid
// ones as leads owned by the caller in one transaction. Invalid rows are
// reported per row and do not block the rest; a storage failure aborts the
// whole batch.
func (s *Service) ImportCSV(ctx context.Context, session *auth.Session, r io.Reader) (*ImportResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, &BadRequestError{Message: "invalid CSV format"}
	}
	if len(records) == 0 {
		return nil, &BadRequestError{Message: "missing header row"}
	}

	index, missing := headerIndex(records[0])
	if len(missing) > 0 {
		return nil, &BadRequestError{
			Message: fmt.Sprintf("missing required headers: %s", strings.Join(missing, ", ")),
		}
	}

	rows := records[1:]
	if len(rows) > importMaxRows {
		return nil, &BadRequestError{
			Message: fmt.Sprintf("too many rows: %d (maximum %d)", len(rows), importMaxRows),
		}
	}

	result := &ImportResult{Errors: []RowError{}}
	var batch []*models.Buyer
	for i, record := range rows {
		rowNum := i + 2

		form, fieldErrs := formFromCSVRow(record, index)
		fieldErrs.merge(Validate(form))
		if !fieldErrs.Empty() {
			result.Errors = append(result.Errors, RowError{Row: rowNum, Message: fieldErrorMessage(fieldErrs)})
			continue
		}

		buyer, err := form.ToModel()
		if err != nil {
			return nil, err
		}
		buyer.OwnerID = session.Sub
		batch = append(batch, buyer)
	}

	if len(batch) > 0 {
		if err := s.store.ImportBuyers(ctx, batch, session.Sub); err != nil {
			return nil, err
		}
	}
	result.Inserted = len(batch)
	log.WithFields(log.Fields{
		"inserted": result.Inserted,
		"rejected": len(result.Errors),
	}).Info("imported buyer leads from CSV")
	return result, nil
}

// ExportCSV writes the leads matching opts to w, same filters and order as
// the list view, without pagination. The header row is always written.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer, opts ListOptions) error {
	opts.Page = 0
	opts.PageSize = 0

	leads, _, err := s.store.ListBuyers(ctx, opts)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	record := append([]string{}, csvHeaders...)
	record = append(record, "updatedAt")
	if err := writer.Write(record); err != nil {
		return err
	}

	for i := range leads {
		form := FormFromModel(&leads[i])
		row := []string{
			form.FullName,
			form.Email,
			form.Phone,
			form.City,
			form.PropertyType,
			form.BHK,
			form.Purpose,
			intPtrString(form.BudgetMin),
			intPtrString(form.BudgetMax),
			form.Timeline,
			form.Source,
			form.Notes,
			strings.Join(form.Tags, "|"),
			form.Status,
			leads[i].UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// headerIndex maps each required header to its column, reporting the ones that
// are absent. Extra columns are ignored.
func headerIndex(header []string) (map[string]int, []string) {
	index := map[string]int{}
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, name := range csvHeaders {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	return index, missing
}

// formFromCSVRow coerces one data row into a form, collecting coercion errors
// (bad numbers) that Validate cannot see once the value is typed.
func formFromCSVRow(record []string, index map[string]int) (BuyerForm, FieldErrors) {
	fieldErrs := FieldErrors{}

	cell := func(name string) string {
		i := index[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	budget := func(name string) *int64 {
		raw := cell(name)
		if raw == "" {
			return nil
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			fieldErrs.add(name, "must be a whole number")
			return nil
		}
		return &v
	}

	form := BuyerForm{
		FullName:     cell("fullName"),
		Email:        cell("email"),
		Phone:        cell("phone"),
		City:         cell("city"),
		PropertyType: cell("propertyType"),
		BHK:          cell("bhk"),
		Purpose:      cell("purpose"),
		BudgetMin:    budget("budgetMin"),
		BudgetMax:    budget("budgetMax"),
		Timeline:     cell("timeline"),
		Source:       cell("source"),
		Notes:        cell("notes"),
		Status:       cell("status"),
		Tags:         []string{},
	}
	for _, tag := range strings.Split(cell("tags"), "|") {
		if tag = strings.TrimSpace(tag); tag != "" {
			form.Tags = append(form.Tags, tag)
		}
	}
	return form, fieldErrs
}

// fieldErrorMessage flattens field errors into one line, fields in sorted
// order so the output is stable.
func fieldErrorMessage(fieldErrs FieldErrors) string {
	fields := make([]string, 0, len(fieldErrs))
	for field := range fieldErrs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var parts []string
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(fieldErrs[field], "; ")))
	}
	return strings.Join(parts, ", ")
}

func intPtrString(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
