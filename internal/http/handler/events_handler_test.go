package handler_test

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taller-labs/workshop-api/internal/auth"
	"github.com/taller-labs/workshop-api/internal/domain"
	"github.com/taller-labs/workshop-api/internal/events"
	"github.com/taller-labs/workshop-api/internal/http/handler"
	"go.uber.org/zap"
)

func newStreamServer(t *testing.T, feed *events.Feed, user *auth.UserContext, writeTimeout time.Duration) *httptest.Server {
	t.Helper()
	h := handler.NewEventsHandler(feed, zap.NewNop())

	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Stream(w, r.WithContext(auth.WithUserContext(r.Context(), user)))
	}))
	srv.Config.WriteTimeout = writeTimeout
	srv.Start()
	t.Cleanup(srv.Close)
	return srv
}

func TestEventsHandler_StreamOutlivesWriteTimeout(t *testing.T) {
	feed := events.NewFeed()
	user := &auth.UserContext{
		EmployeeID:  uuid.New(),
		TenantID:    uuid.New(),
		DisplayName: "Seller",
		Email:       "seller@example.com",
		Role:        domain.RoleSalesperson,
	}

	srv := newStreamServer(t, feed, user, 250*time.Millisecond)

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	// Publish only after the server's write timeout would have fired
	entityID := uuid.New()
	go func() {
		time.Sleep(500 * time.Millisecond)
		feed.Publish(events.Event{
			Entity:   "customer",
			Action:   events.ActionCreated,
			EntityID: entityID,
			TenantID: user.TenantID,
		})
	}()

	lines := make(chan string, 1)
	readErrs := make(chan error, 1)
	go func() {
		reader := bufio.NewReader(resp.Body)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				readErrs <- err
				return
			}
			if strings.HasPrefix(line, "data: ") {
				lines <- line
				return
			}
		}
	}()

	select {
	case line := <-lines:
		assert.Contains(t, line, entityID.String())
	case err := <-readErrs:
		t.Fatalf("stream closed before delivering the event: %v", err)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for the event")
	}
}
