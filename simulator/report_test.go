package simulator

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ridedispatch/core/model"
)

func TestBuildReport(t *testing.T) {
	c := newDemoCompany(t)
	p1, err := model.NewPassenger(1, "Ann", "a", 2)
	require.NoError(t, err)
	p2, err := model.NewPassenger(2, "Bob", "b", 10)
	require.NoError(t, err)
	p3, err := model.NewPassenger(3, "Cid", "c", 20)
	require.NoError(t, err)
	o, _ := model.NewLocation(0, 0, "")
	a, _ := model.NewLocation(3, 4, "")
	b, _ := model.NewLocation(6, 8, "")

	require.True(t, c.ScheduleVehicle(p1, o, a))
	require.True(t, c.ScheduleVehicle(p2, o, b))
	require.False(t, c.ScheduleVehicle(p3, o, b))

	v1 := c.Fleet()[0].ID
	c.NotifyArrivedAtPickup(v1)
	c.NotifyDroppedOff(v1)

	rep := BuildReport(c)
	assert.Equal(t, 3, rep.Requests)
	assert.Equal(t, 2, rep.Scheduled)
	assert.Equal(t, 1, rep.Lost)
	assert.Equal(t, 1, rep.Completed)
	assert.Equal(t, 1, rep.Active)
	assert.Equal(t, 2, rep.Available)
	assert.InDelta(t, 1.0/3, rep.LostFareRate, 1e-9)
	assert.InDelta(t, 7.5, rep.MeanDistance, 1e-9)
	assert.Positive(t, rep.StdDistance)
	assert.InDelta(t, 32.0/3, rep.MeanGroupSize, 1e-9)
	// the test clock ticks in whole minutes
	assert.Positive(t, rep.MeanWait)
	assert.Equal(t, time.Duration(0), rep.MeanWait%time.Minute)
}

func TestBuildReportEmpty(t *testing.T) {
	rep := BuildReport(newDemoCompany(t))
	assert.Zero(t, rep.Requests)
	assert.Zero(t, rep.LostFareRate)
	assert.Zero(t, rep.MeanDistance)
	assert.Zero(t, rep.MeanWait)
}

func TestReportWriteTo(t *testing.T) {
	rep := Report{
		Requests:  5,
		Scheduled: 3,
		Lost:      2,
		Sources: map[string]SourceStats{
			"hotel":     {Requests: 3, Scheduled: 2},
			"corporate": {Requests: 2, Scheduled: 1},
		},
	}
	var buf bytes.Buffer
	n, err := rep.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	out := buf.String()
	assert.Contains(t, out, "requests")
	assert.Regexp(t, `source corporate\s+1/2 scheduled`, out)
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("source corporate")), bytes.Index(buf.Bytes(), []byte("source hotel")))
}
