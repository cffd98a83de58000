package contact

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"sms_campaign_server/pkg/errorx"
)

// Header aliases, matched case-insensitively. Earlier aliases win.
var (
	phoneHeaders = []string{"phone", "mobile", "number", "cell"}
	nameHeaders  = []string{"name", "firstname", "first_name", "first name", "lastname", "last_name", "last name", "fullname", "full name"}
	emailHeaders = []string{"email"}
)

// phonePattern is the fallback for rows whose phone column is empty or absent.
var phonePattern = regexp.MustCompile(`^\+?\d{10,}$`)

// csvContact is one usable row.
type csvContact struct {
	Phone string
	Name  string
	Email *string
}

// ingestStats summarizes one file.
type ingestStats struct {
	TotalRows int // data rows, header excluded
	Skipped   int // rows without a phone
	Processed int
}

// columnMap holds the header positions of each field in alias priority order.
type columnMap struct {
	phone []int
	name  []int
	email []int
}

func newColumnMap(header []string) columnMap {
	byName := make(map[string][]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if i == 0 {
			key = strings.TrimPrefix(key, "\ufeff")
		}
		byName[key] = append(byName[key], i)
	}
	resolve := func(aliases []string) []int {
		var cols []int
		for _, a := range aliases {
			cols = append(cols, byName[a]...)
		}
		return cols
	}
	return columnMap{
		phone: resolve(phoneHeaders),
		name:  resolve(nameHeaders),
		email: resolve(emailHeaders),
	}
}

func firstValue(record []string, cols []int) string {
	for _, c := range cols {
		if c < len(record) {
			if v := strings.TrimSpace(record[c]); v != "" {
				return v
			}
		}
	}
	return ""
}

// parse extracts a contact from record. rowNum is 1-based over data rows.
func (m columnMap) parse(record []string, rowNum int) (csvContact, bool) {
	phone := firstValue(record, m.phone)
	if phone == "" {
		for _, v := range record {
			if v = strings.TrimSpace(v); phonePattern.MatchString(v) {
				phone = v
				break
			}
		}
	}
	if phone == "" {
		return csvContact{}, false
	}

	row := csvContact{Phone: phone, Name: firstValue(record, m.name)}
	if row.Name == "" {
		row.Name = fmt.Sprintf("Contact %d", rowNum)
	}
	if email := firstValue(record, m.email); email != "" {
		row.Email = &email
	}
	return row, true
}

// ingestCSV streams r and hands usable rows to flush in batches of batchSize.
// A phone repeated inside one batch is passed once. An error from flush stops the read.
func ingestCSV(r io.Reader, batchSize int, flush func([]csvContact) error) (ingestStats, error) {
	var stats ingestStats
	if batchSize <= 0 {
		batchSize = 1
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return stats, errorx.New(errorx.CodeInvalidParam, "csv file is empty")
	}
	if err != nil {
		return stats, errorx.Wrap(err, errorx.CodeInvalidParam, "malformed csv header")
	}
	columns := newColumnMap(header)

	batch := make([]csvContact, 0, batchSize)
	seen := make(map[string]struct{}, batchSize)
	send := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := flush(batch); err != nil {
			return err
		}
		batch = make([]csvContact, 0, batchSize)
		seen = make(map[string]struct{}, batchSize)
		return nil
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, errorx.Wrapf(err, errorx.CodeInvalidParam, "malformed csv at row %d", stats.TotalRows+1)
		}
		stats.TotalRows++

		row, ok := columns.parse(record, stats.TotalRows)
		if !ok {
			stats.Skipped++
			continue
		}
		stats.Processed++
		if _, dup := seen[row.Phone]; dup {
			continue
		}
		seen[row.Phone] = struct{}{}
		batch = append(batch, row)

		if len(batch) >= batchSize {
			if err := send(); err != nil {
				return stats, err
			}
		}
	}
	return stats, send()
}
