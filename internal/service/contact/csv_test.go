package contact

import (
	"errors"
	"strings"
	"testing"

	"sms_campaign_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, input string, batchSize int) ([][]csvContact, ingestStats) {
	t.Helper()
	var batches [][]csvContact
	stats, err := ingestCSV(strings.NewReader(input), batchSize, func(b []csvContact) error {
		batches = append(batches, append([]csvContact(nil), b...))
		return nil
	})
	require.NoError(t, err)
	return batches, stats
}

func TestIngestCSVHeaderVariants(t *testing.T) {
	input := "\ufeffFirst Name,Mobile,EMAIL\n" +
		"Ann,+15550000001,ann@example.com\n" +
		"  Bob  ,+15550000002,\n"
	batches, stats := collect(t, input, 100)

	require.Len(t, batches, 1)
	rows := batches[0]
	require.Len(t, rows, 2)
	assert.Equal(t, "Ann", rows[0].Name)
	assert.Equal(t, "+15550000001", rows[0].Phone)
	require.NotNil(t, rows[0].Email)
	assert.Equal(t, "ann@example.com", *rows[0].Email)
	assert.Equal(t, "Bob", rows[1].Name)
	assert.Nil(t, rows[1].Email)
	assert.Equal(t, ingestStats{TotalRows: 2, Processed: 2}, stats)
}

func TestIngestCSVMobileAndFullNameHeaders(t *testing.T) {
	input := "Mobile,Full Name\n" +
		"+15550000001,Ann Lee\n" +
		",Bob\n"
	batches, stats := collect(t, input, 100)

	require.Len(t, batches, 1)
	require.Len(t, batches[0], 1)
	assert.Equal(t, "+15550000001", batches[0][0].Phone)
	assert.Equal(t, "Ann Lee", batches[0][0].Name)
	assert.Equal(t, ingestStats{TotalRows: 2, Skipped: 1, Processed: 1}, stats)
}

func TestIngestCSVPhonePriorityAndFallback(t *testing.T) {
	input := "cell,phone,notes\n" +
		"+15550000009,+15550000001,\n" + // phone beats cell
		",,call 15550000002\n" + // not a bare number
		",,15550000003\n" // fallback match
	batches, stats := collect(t, input, 100)

	require.Len(t, batches, 1)
	require.Len(t, batches[0], 2)
	assert.Equal(t, "+15550000001", batches[0][0].Phone)
	assert.Equal(t, "15550000003", batches[0][1].Phone)
	assert.Equal(t, "Contact 3", batches[0][1].Name)
	assert.Equal(t, 3, stats.TotalRows)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 2, stats.Processed)
}

func TestIngestCSVBatchesAndDedupsWithinBatch(t *testing.T) {
	input := "phone\n+15550000001\n+15550000001\n+15550000002\n+15550000003\n"
	batches, stats := collect(t, input, 2)

	require.Len(t, batches, 2)
	assert.Len(t, batches[0], 2)
	assert.Len(t, batches[1], 1)
	assert.Equal(t, 4, stats.Processed)
}

func TestIngestCSVRaggedRows(t *testing.T) {
	input := "name,phone\nAnn\nBob,+15550000002,extra\n"
	batches, stats := collect(t, input, 10)
	require.Len(t, batches, 1)
	assert.Len(t, batches[0], 1)
	assert.Equal(t, 1, stats.Skipped)
}

func TestIngestCSVEmpty(t *testing.T) {
	_, err := ingestCSV(strings.NewReader(""), 10, func([]csvContact) error { return nil })
	assert.True(t, errorx.IsCode(err, errorx.CodeInvalidParam))
}

func TestIngestCSVStopsOnFlushError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	_, err := ingestCSV(strings.NewReader("phone\n+15550000001\n+15550000002\n"), 1, func([]csvContact) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}
