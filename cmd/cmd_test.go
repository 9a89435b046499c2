package cmd

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/ridedispatch/core/dispatch/journal"
	"github.com/kilianp07/ridedispatch/simulator"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T) (cfgFile, journalFile string) {
	t.Helper()
	dir := t.TempDir()
	journalFile = filepath.Join(dir, "trips.jsonl")
	cfgFile = filepath.Join(dir, "config.yaml")
	data := "company:\n  name: cli co\njournal:\n  enabled: true\n  path: " + journalFile + "\n"
	require.NoError(t, os.WriteFile(cfgFile, []byte(data), 0o644))
	return cfgFile, journalFile
}

func TestSimulateAndQueryJournal(t *testing.T) {
	cfgFile, _ := writeConfig(t)

	out, err := execute(t, "simulate", "-c", cfgFile, "--seed", "7", "-n", "12", "--json")
	require.NoError(t, err)
	var rep simulator.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Equal(t, 12, rep.Requests)
	assert.Equal(t, rep.Requests, rep.Scheduled+rep.Lost)

	out, err = execute(t, "journal", "query", "-c", cfgFile, "--event", "fare_lost", "--format", "jsonl")
	require.NoError(t, err)
	lost := 0
	sc := bufio.NewScanner(bytes.NewBufferString(out))
	for sc.Scan() {
		var r journal.TripRecord
		require.NoError(t, json.Unmarshal(sc.Bytes(), &r))
		assert.Equal(t, "fare_lost", r.Event)
		lost++
	}
	assert.Equal(t, rep.Lost, lost)
}

func TestSimulateZeroRequests(t *testing.T) {
	cfgFile, _ := writeConfig(t)
	out, err := execute(t, "simulate", "-c", cfgFile, "--seed", "2", "-n", "0", "--json")
	require.NoError(t, err)
	var rep simulator.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))
	assert.Zero(t, rep.Requests)
	assert.Zero(t, rep.Scheduled+rep.Lost)

	out, err = execute(t, "journal", "query", "-c", cfgFile, "--event", "", "--format", "jsonl")
	require.NoError(t, err)
	assert.Empty(t, bytes.TrimSpace([]byte(out)))
}

func TestJournalQueryCSV(t *testing.T) {
	cfgFile, _ := writeConfig(t)
	_, err := execute(t, "simulate", "-c", cfgFile, "--seed", "3", "-n", "6", "--json")
	require.NoError(t, err)

	out, err := execute(t, "journal", "query", "-c", cfgFile, "--event", "", "--format", "csv")
	require.NoError(t, err)
	rows, err := csv.NewReader(bytes.NewBufferString(out)).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, "timestamp", rows[0][0])
	// every request is journaled as scheduled or lost
	scheduledOrLost := 0
	for _, r := range rows[1:] {
		if r[1] == "trip_scheduled" || r[1] == "fare_lost" {
			scheduledOrLost++
		}
	}
	assert.Equal(t, 6, scheduledOrLost)

	_, err = execute(t, "journal", "query", "-c", cfgFile, "--format", "xml")
	assert.Error(t, err)
}

func TestKPIQuery(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.yaml")
	data := "kpi:\n  enabled: true\n  path: " + filepath.Join(dir, "kpi.db") + "\n"
	require.NoError(t, os.WriteFile(cfgFile, []byte(data), 0o644))

	out, err := execute(t, "simulate", "-c", cfgFile, "--seed", "5", "-n", "9", "--json")
	require.NoError(t, err)
	var rep simulator.Report
	require.NoError(t, json.Unmarshal([]byte(out), &rep))

	out, err = execute(t, "kpi", "query", "-c", cfgFile, "--days", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "OCCUPANCY")
	if rep.Completed > 0 {
		assert.Regexp(t, `UAB-\d{3}[A-C]\s+\d{4}-\d{2}-\d{2}`, out)
	}

	_, err = execute(t, "kpi", "query", "-c", cfgFile, "--days", "0")
	assert.Error(t, err)
}

func TestSimulateTable(t *testing.T) {
	cfgFile, _ := writeConfig(t)
	out, err := execute(t, "simulate", "-c", cfgFile, "--seed", "1", "-n", "5", "--json=false")
	require.NoError(t, err)
	assert.Contains(t, out, `Company{name="cli co"`)
	assert.Contains(t, out, "lost fare rate")
}

func TestFleetLs(t *testing.T) {
	out, err := execute(t, "fleet", "ls", "-c", "")
	require.NoError(t, err)
	for _, want := range []string{"PLATE", "UAB-123A", "UAB-456B", "UAB-789C", "Mary Nakato", "large"} {
		assert.Contains(t, out, want)
	}
}

func TestBadConfig(t *testing.T) {
	_, err := execute(t, "fleet", "ls", "-c", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestScenarioRun(t *testing.T) {
	out, err := execute(t, "scenario", "run", "../qa/scenarios/first_fit.yaml", "../qa/scenarios/drop_off.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "PASS first_fit")
	assert.Contains(t, out, "PASS drop_off")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("name: bad\nexpected:\n  lost: 2\n"), 0o644))
	out, err = execute(t, "scenario", "run", bad)
	assert.Error(t, err)
	assert.Contains(t, out, "FAIL bad")
	assert.Contains(t, out, "lost fares = 0, want 2")
}
