package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendGridMailer(t *testing.T) {
	var got map[string]interface{}
	status := http.StatusAccepted
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer sg-key", r.Header.Get("Authorization"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(status)
	}))
	defer srv.Close()

	mailer := NewSendGridMailer("sg-key", "VolunteerHub", "noreply@x.com")
	mailer.client.BaseURL = srv.URL + "/v3/mail/send"

	m := Mail{To: "ann@x.com", ToName: "Ann", Subject: "Verify", Text: "plain", HTML: "<p>html</p>"}
	require.NoError(t, mailer.Send(context.Background(), m))
	assert.Equal(t, "noreply@x.com", got["from"].(map[string]interface{})["email"])
	personalizations := got["personalizations"].([]interface{})
	require.Len(t, personalizations, 1)
	assert.Equal(t, "Verify", personalizations[0].(map[string]interface{})["subject"])

	status = http.StatusBadRequest
	err := mailer.Send(context.Background(), m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}
