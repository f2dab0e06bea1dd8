//go:build e2e

// test/e2e/e2e_test.go
package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiclient "activity-signup/internal/common/http"
	"activity-signup/internal/events"
	"activity-signup/internal/models"
)

var client *apiclient.Client

func TestMain(m *testing.M) {
	baseURL := os.Getenv("E2E_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	client = apiclient.NewClient(baseURL, 10*time.Second)

	// wait for the server to come up
	deadline := time.Now().Add(30 * time.Second)
	for {
		status, err := client.DoJSON(context.Background(), http.MethodGet, "/health", nil)
		if err == nil && status == http.StatusOK {
			break
		}
		if time.Now().After(deadline) {
			fmt.Fprintf(os.Stderr, "server at %s not healthy: status=%d err=%v\n", baseURL, status, err)
			os.Exit(1)
		}
		time.Sleep(time.Second)
	}

	os.Exit(m.Run())
}

func getActivities(t *testing.T) map[string]models.ActivityView {
	t.Helper()
	var all map[string]models.ActivityView
	status, err := client.DoJSON(context.Background(), http.MethodGet, "/activities", &all)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	return all
}

func TestGetActivities(t *testing.T) {
	all := getActivities(t)
	assert.Contains(t, all, "Basketball Team")
}

func TestSignupAndDeleteFlow(t *testing.T) {
	ctx := context.Background()
	email := fmt.Sprintf("e2e-%d@example.com", time.Now().UnixNano())
	const activity = "Basketball Team"

	var msg models.SignupResult
	status, err := client.DoJSON(ctx, http.MethodPost, apiclient.ActivityPath(activity, "/signup", email), &msg)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, msg.Message, "Signed up")
	assert.Contains(t, getActivities(t)[activity].Participants, email)

	var detail models.ErrorDetail
	status, err = client.DoJSON(ctx, http.MethodPost, apiclient.ActivityPath(activity, "/signup", email), &detail)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, status)

	status, err = client.DoJSON(ctx, http.MethodDelete, apiclient.ActivityPath(activity, "/participants", email), &msg)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, msg.Message, "Removed")
	assert.NotContains(t, getActivities(t)[activity].Participants, email)
}

func TestRemoveNonexistentParticipant(t *testing.T) {
	var detail models.ErrorDetail
	status, err := client.DoJSON(context.Background(), http.MethodDelete,
		apiclient.ActivityPath("Tennis Club", "/participants", "noone@example.com"), &detail)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, strings.ToLower(detail.Detail), "not signed up")
}

// TestParticipantEventsOnRedis runs only when the server publishes to Redis.
func TestParticipantEventsOnRedis(t *testing.T) {
	addr := os.Getenv("E2E_REDIS_ADDR")
	if addr == "" {
		t.Skip("E2E_REDIS_ADDR not set")
	}
	channel := os.Getenv("E2E_REDIS_CHANNEL")
	if channel == "" {
		channel = "activities.participants"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()
	sub := rdb.Subscribe(ctx, channel)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	email := fmt.Sprintf("e2e-redis-%d@example.com", time.Now().UnixNano())
	status, err := client.DoJSON(ctx, http.MethodPost, apiclient.ActivityPath("Chess Club", "/signup", email), nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	t.Cleanup(func() {
		client.DoJSON(context.Background(), http.MethodDelete, apiclient.ActivityPath("Chess Club", "/participants", email), nil)
	})

	for {
		select {
		case msg := <-sub.Channel():
			var evt events.Event
			require.NoError(t, json.Unmarshal([]byte(msg.Payload), &evt))
			if evt.Email != email {
				continue
			}
			assert.Equal(t, events.TypeSignedUp, evt.Type)
			assert.Equal(t, "Chess Club", evt.Activity)
			return
		case <-ctx.Done():
			t.Fatal("no signup event received")
		}
	}
}
