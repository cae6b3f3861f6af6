package integration_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobboard_backend/internal/models"
	"jobboard_backend/test/helpers"
)

func TestJobCRUD(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	tokens, _ := helpers.NewLoggedInUser(t, ts)

	createBody := map[string]interface{}{
		"title":         "Backend Engineer",
		"company":       "Acme Corp",
		"description":   "Build and maintain backend services in Go.",
		"location":      "Berlin",
		"salary":        "70000 - 90000",
		"contract_type": "full_time",
		"work_type":     "hybrid",
	}
	createRes, createBodyStr := ts.SendRequest(t, http.MethodPost, "/api/v1/jobs", tokens.AccessToken, createBody)
	require.Equal(t, http.StatusCreated, createRes.StatusCode, createBodyStr)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(createBodyStr), &created))
	require.NotEmpty(t, created.ID)

	getRes, getBodyStr := ts.SendRequest(t, http.MethodGet, "/api/v1/jobs/"+created.ID, tokens.AccessToken, nil)
	assert.Equal(t, http.StatusOK, getRes.StatusCode, getBodyStr)
	assert.Contains(t, getBodyStr, "Backend Engineer")
	assert.Contains(t, getBodyStr, "Acme Corp")

	updRes, updBodyStr := ts.SendRequest(t, http.MethodPut, "/api/v1/jobs/"+created.ID, tokens.AccessToken, map[string]interface{}{
		"title": "Senior Backend Engineer",
	})
	assert.Equal(t, http.StatusOK, updRes.StatusCode, updBodyStr)
	assert.Contains(t, updBodyStr, "Senior Backend Engineer")

	delRes, delBodyStr := ts.SendRequest(t, http.MethodDelete, "/api/v1/jobs/"+created.ID, tokens.AccessToken, nil)
	assert.Equal(t, http.StatusOK, delRes.StatusCode, delBodyStr)

	// Soft-deleted jobs disappear from direct lookups.
	goneRes, _ := ts.SendRequest(t, http.MethodGet, "/api/v1/jobs/"+created.ID, tokens.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, goneRes.StatusCode)
}

func TestJobValidation(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	tokens, _ := helpers.NewLoggedInUser(t, ts)

	res, bodyStr := ts.SendRequest(t, http.MethodPost, "/api/v1/jobs", tokens.AccessToken, map[string]interface{}{
		"title":         "X",
		"company":       "Acme",
		"description":   "too short",
		"contract_type": "gig",
	})
	assert.Equal(t, http.StatusBadRequest, res.StatusCode, bodyStr)
}

// A job can only be updated or deleted by its poster; everyone else
// sees a 404, not a 403.
func TestJobOwnership(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	ownerTokens, owner := helpers.NewLoggedInUser(t, ts)
	otherTokens, _ := helpers.NewLoggedInUser(t, ts)

	job := helpers.CreateTestJob(t, ts.DB, owner.ID, "Owned Job")

	updRes, _ := ts.SendRequest(t, http.MethodPut, "/api/v1/jobs/"+job.ID, otherTokens.AccessToken, map[string]interface{}{
		"title": "Hijacked",
	})
	assert.Equal(t, http.StatusNotFound, updRes.StatusCode)

	delRes, _ := ts.SendRequest(t, http.MethodDelete, "/api/v1/jobs/"+job.ID, otherTokens.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, delRes.StatusCode)

	// The owner still can.
	okRes, _ := ts.SendRequest(t, http.MethodPut, "/api/v1/jobs/"+job.ID, ownerTokens.AccessToken, map[string]interface{}{
		"title": "Still Mine",
	})
	assert.Equal(t, http.StatusOK, okRes.StatusCode)
}

func TestJobListFilters(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	tokens, user := helpers.NewLoggedInUser(t, ts)

	marker := fmt.Sprintf("Filterable%d", user.CreatedAt.UnixNano())
	job := helpers.CreateTestJob(t, ts.DB, user.ID, marker+" Engineer")
	require.NoError(t, ts.DB.Model(job).Update("work_type", models.WorkRemote).Error)

	res, bodyStr := ts.SendRequest(t, http.MethodGet,
		"/api/v1/jobs?search="+marker+"&work_type=remote", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, res.StatusCode, bodyStr)

	var list struct {
		Jobs  []map[string]interface{} `json:"jobs"`
		Total int64                    `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(bodyStr), &list))
	require.Equal(t, int64(1), list.Total, bodyStr)
	assert.Contains(t, list.Jobs[0]["title"], marker)

	mineRes, mineBodyStr := ts.SendRequest(t, http.MethodGet,
		"/api/v1/jobs?search="+marker+"&mine=true", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, mineRes.StatusCode, mineBodyStr)
	assert.Contains(t, mineBodyStr, marker)
}

func TestApplyAndWithdraw(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	_, poster := helpers.NewLoggedInUser(t, ts)
	tokens, _ := helpers.NewLoggedInUser(t, ts)

	job := helpers.CreateTestJob(t, ts.DB, poster.ID, "Apply Target")

	applyRes, applyBodyStr := ts.SendRequest(t, http.MethodPost, "/api/v1/jobs/"+job.ID+"/apply", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusOK, applyRes.StatusCode, applyBodyStr)

	// Applying twice is a conflict and must not bump the counter.
	dupRes, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/jobs/"+job.ID+"/apply", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusConflict, dupRes.StatusCode)

	var stored models.Job
	require.NoError(t, ts.DB.First(&stored, "id = ?", job.ID).Error)
	assert.Equal(t, 1, stored.ApplyCount)

	withdrawRes, _ := ts.SendRequest(t, http.MethodDelete, "/api/v1/jobs/"+job.ID+"/apply", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusOK, withdrawRes.StatusCode)

	require.NoError(t, ts.DB.First(&stored, "id = ?", job.ID).Error)
	assert.Equal(t, 0, stored.ApplyCount)

	// Withdrawing again finds nothing.
	againRes, _ := ts.SendRequest(t, http.MethodDelete, "/api/v1/jobs/"+job.ID+"/apply", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, againRes.StatusCode)
}

// Withdrawing an application must keep working after the posting is
// soft-deleted: the application belongs to the applicant.
func TestWithdrawAfterJobDeleted(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	posterTokens, poster := helpers.NewLoggedInUser(t, ts)
	tokens, _ := helpers.NewLoggedInUser(t, ts)

	job := helpers.CreateTestJob(t, ts.DB, poster.ID, "Vanishing Role")

	applyRes, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/jobs/"+job.ID+"/apply", tokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, applyRes.StatusCode)

	delRes, _ := ts.SendRequest(t, http.MethodDelete, "/api/v1/jobs/"+job.ID, posterTokens.AccessToken, nil)
	require.Equal(t, http.StatusOK, delRes.StatusCode)

	withdrawRes, withdrawBodyStr := ts.SendRequest(t, http.MethodDelete, "/api/v1/jobs/"+job.ID+"/apply", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusOK, withdrawRes.StatusCode, withdrawBodyStr)

	// A job that never existed is a plain 404.
	missingRes, _ := ts.SendRequest(t, http.MethodDelete, "/api/v1/jobs/00000000-0000-0000-0000-000000000000/apply", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, missingRes.StatusCode)
}

func TestSaveAndUnsave(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	_, poster := helpers.NewLoggedInUser(t, ts)
	tokens, _ := helpers.NewLoggedInUser(t, ts)

	job := helpers.CreateTestJob(t, ts.DB, poster.ID, "Save Target")

	saveRes, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/jobs/"+job.ID+"/save", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusOK, saveRes.StatusCode)

	dupRes, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/jobs/"+job.ID+"/save", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusConflict, dupRes.StatusCode)

	var stored models.Job
	require.NoError(t, ts.DB.First(&stored, "id = ?", job.ID).Error)
	assert.Equal(t, 1, stored.SaveCount)

	unsaveRes, _ := ts.SendRequest(t, http.MethodDelete, "/api/v1/jobs/"+job.ID+"/save", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusOK, unsaveRes.StatusCode)

	require.NoError(t, ts.DB.First(&stored, "id = ?", job.ID).Error)
	assert.Equal(t, 0, stored.SaveCount)
}

// Five users applying at the same time must leave apply_count at
// exactly five.
func TestConcurrentApplies(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	_, poster := helpers.NewLoggedInUser(t, ts)
	job := helpers.CreateTestJob(t, ts.DB, poster.ID, "Concurrent Target")

	const applicants = 5
	tokens := make([]helpers.AuthTokens, applicants)
	for i := 0; i < applicants; i++ {
		tokens[i], _ = helpers.NewLoggedInUser(t, ts)
	}

	var wg sync.WaitGroup
	statuses := make([]int, applicants)
	for i := 0; i < applicants; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/jobs/"+job.ID+"/apply", tokens[i].AccessToken, nil)
			statuses[i] = res.StatusCode
		}(i)
	}
	wg.Wait()

	for i, status := range statuses {
		assert.Equal(t, http.StatusOK, status, "applicant %d", i)
	}

	var stored models.Job
	require.NoError(t, ts.DB.First(&stored, "id = ?", job.ID).Error)
	assert.Equal(t, applicants, stored.ApplyCount)
}

func TestApplyToMissingJob(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	tokens, _ := helpers.NewLoggedInUser(t, ts)

	res, _ := ts.SendRequest(t, http.MethodPost,
		"/api/v1/jobs/00000000-0000-0000-0000-000000000000/apply", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

// The test environment carries no aggregator credentials, so the
// external proxy reports itself unavailable instead of failing oddly.
func TestExternalSearchUnconfigured(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	tokens, _ := helpers.NewLoggedInUser(t, ts)

	res, bodyStr := ts.SendRequest(t, http.MethodGet, "/api/v1/jobs/external?query=go", tokens.AccessToken, nil)
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode, bodyStr)
}

func TestJobsRequireAuth(t *testing.T) {
	t.Parallel()
	ts := GetTestServer(t)

	res, _ := ts.SendRequest(t, http.MethodGet, "/api/v1/jobs", "", nil)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
}
