package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ridedispatch/core/dispatch/journal"
	"github.com/kilianp07/ridedispatch/core/model"
)

var at = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func records() []journal.TripRecord {
	return []journal.TripRecord{
		{Timestamp: at, Event: "trip_completed", TripID: 1, VehicleID: 2, Class: "small", PassengerID: 4, GroupSize: 3,
			Pickup: model.Location{X: 1, Y: 2}, Destination: model.Location{X: 5, Y: 6}, WaitSeconds: 60, RideSeconds: 90.5},
		{Timestamp: at, Event: "fare_lost", TripID: 2, PassengerID: 5, GroupSize: 20},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{"2024-03-01T09:00:00Z", "trip_completed", "1", "2", "small", "4", "3",
		"1", "2", "5", "6", "60", "90.5"}, rows[1])
	assert.Equal(t, "", rows[2][3])
	assert.Equal(t, "20", rows[2][6])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, records()))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], `"event":"fare_lost"`)
}

func TestWriteFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatCSV, nil))
	assert.True(t, strings.HasPrefix(buf.String(), "timestamp,event"))
	assert.Error(t, Write(&buf, "xml", nil))
}
