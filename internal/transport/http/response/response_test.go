package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelope(t *testing.T) {
	b, err := json.Marshal(OK(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":0,"msg":"OK","data":{}}`, string(b))

	b, err = json.Marshal(Error(CodeConflict, ""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":409,"msg":"Conflict","data":{}}`, string(b))

	assert.Equal(t, "you have already voted", Error(CodeConflict, "you have already voted").Msg)
}

func TestAbortRecordsCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	assert.Equal(t, -1, CodeOf(c))

	Abort(c, CodeTooManyRequests, "")
	assert.True(t, c.IsAborted())
	assert.Equal(t, CodeTooManyRequests, CodeOf(c))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"code":429,"msg":"Too Many Requests","data":{}}`, w.Body.String())
}
