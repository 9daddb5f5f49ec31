package apierror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_Statuses(t *testing.T) {
	cases := []struct {
		status int
		kind   Kind
	}{
		{404, EndpointNotFound},
		{403, Forbidden},
		{401, Validation},
		{400, Validation},
		{409, Validation},
		{500, ServerError},
		{503, ServerError},
		{302, Unknown},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprint(tc.status), func(t *testing.T) {
			e := Classify("GET /x/", tc.status, nil)
			assert.Equal(t, tc.kind, e.Kind)
			assert.Equal(t, tc.status, e.Status)
		})
	}
}

func TestClassify_RewritesServerMessage(t *testing.T) {
	e := Classify("op", 500, []byte(`{"detail":"db exploded"}`))
	assert.Equal(t, MsgServer, e.Message)
	assert.Equal(t, "db exploded", e.Detail)
	assert.Equal(t, []byte(`{"detail":"db exploded"}`), e.Body)
}

func TestClassify_ForbiddenKeepsServerText(t *testing.T) {
	e := Classify("op", 403, []byte(`{"error":"Only BOSS can access profit reports"}`))
	assert.Equal(t, "Only BOSS can access profit reports", e.Message)
}

func TestParseEnvelope_DRFFieldMap(t *testing.T) {
	detail, fields := ParseEnvelope([]byte(`{"username":["This field is required."],"price":["Must be positive."]}`))
	require.Len(t, fields, 2)
	assert.Equal(t, "This field is required.", fields["username"])
	assert.Equal(t, "price: Must be positive.", detail)
}

func TestParseEnvelope_NotJSON(t *testing.T) {
	detail, fields := ParseEnvelope([]byte("<html>bad gateway</html>"))
	assert.Empty(t, detail)
	assert.Nil(t, fields)
}

func TestHelpers_SeeThroughWrapping(t *testing.T) {
	base := Network("GET /products/", errors.New("dial tcp: refused"))
	wrapped := fmt.Errorf("load dashboard: %w", base)

	assert.Equal(t, NetworkUnreachable, KindOf(wrapped))
	assert.True(t, Is(wrapped, NetworkUnreachable))
	assert.False(t, Is(wrapped, Forbidden))
	assert.Equal(t, 0, StatusOf(wrapped))
	assert.Equal(t, Unknown, KindOf(errors.New("plain")))
	assert.Contains(t, base.Error(), MsgNetwork)
}
