package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestIncMilestoneTransition(t *testing.T) {
	before := testutil.ToFloat64(MilestoneTransitions.WithLabelValues("accept"))

	IncMilestoneTransition("accept")
	IncMilestoneTransition("accept")

	assert.Equal(t, before+2, testutil.ToFloat64(MilestoneTransitions.WithLabelValues("accept")))
}

func TestIncOutboxEvent(t *testing.T) {
	before := testutil.ToFloat64(OutboxPublished.WithLabelValues("milestone_accepted", "sent"))

	IncOutboxEvent("milestone_accepted", "sent")

	assert.Equal(t, before+1, testutil.ToFloat64(OutboxPublished.WithLabelValues("milestone_accepted", "sent")))
}

func TestRecordGatewayCall(t *testing.T) {
	RecordGatewayCall("create_intent", "ok", 20*time.Millisecond)

	assert.Positive(t, testutil.CollectAndCount(GatewayCallDuration, "gigmarket_gateway_call_duration_seconds"))
}

func TestMiddleware(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/api/contracts/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	before := testutil.CollectAndCount(HTTPRequestDuration)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/contracts/42", nil))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/contracts/43", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, before+1, testutil.CollectAndCount(HTTPRequestDuration))
}
