package commands

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const finalPage = `<html><body><div class="content"><h2>FA 2024 Final Exam Schedule</h2>
<pre><strong>Course    Date  Time     Type       Location</strong>
CS 2110 001 12/14 9:00 AM in person Barton Hall
MATH 1920 12/15 2:00 PM take home Online</pre></div></body></html>`

func setupEnv(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/exams/fa-2024-final-exam-schedule" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(finalPage))
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(dir, "exams.db"))
	t.Setenv("SCRAPER_BASE_URL", srv.URL+"/exams/")
	t.Setenv("SCRAPER_ARTIFACT_DIR", filepath.Join(dir, "artifacts"))
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "none.yaml")))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestScrapePrintsRecords(t *testing.T) {
	dir := setupEnv(t)

	out, err := run(t, "scrape", "FA 2024", "final")
	require.NoError(t, err)
	assert.Contains(t, out, "FA 2024 Final Exam Schedule")
	assert.Contains(t, out, "CS 2110 001")
	assert.Contains(t, out, "take home")

	artifact := filepath.Join(dir, "artifacts", "fa-2024-2024-final-exams.txt")
	_, err = os.Stat(artifact)
	require.NoError(t, err)

	out, err = run(t, "scrape", "FA 2024", "final", "--from-artifact", artifact)
	require.NoError(t, err)
	assert.Contains(t, out, "MATH 1920")
}

func TestPopulateThenQuery(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "populate", "FA 2024", "final")
	require.NoError(t, err)
	assert.Contains(t, out, "inserted 2 records into fa_2024_2024_final_exams")

	out, err = run(t, "courses", "FA 2024", "final")
	require.NoError(t, err)
	assert.Equal(t, "CS 2110 001\nMATH 1920\n", out)

	out, err = run(t, "exams", "FA 2024", "final", "MATH 1920")
	require.NoError(t, err)
	assert.Contains(t, out, "12/15")

	out, err = run(t, "tables")
	require.NoError(t, err)
	assert.Contains(t, out, "fa_2024_2024_final_exams")

	out, err = run(t, "populate", "FA 2024", "final", "--replace")
	require.NoError(t, err)
	assert.Contains(t, out, "(2 total)")

	_, err = run(t, "tables", "drop", "FA 2024", "final")
	require.NoError(t, err)
	_, err = run(t, "courses", "FA 2024", "final")
	assert.Error(t, err)
}

func TestUnknownExamType(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "populate", "FA 2024", "midterm")
	assert.ErrorContains(t, err, "unknown exam type")
}
