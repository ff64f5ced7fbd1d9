package mailservice

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTemplate(t *testing.T) {
	template, err := NewTemplate()
	require.NoError(t, err)

	testCases := []struct {
		name         string
		templateName string
		data         any
		expectedErr  error
		contains     string
	}{
		{
			name:         "comment notification",
			templateName: commentNotificationTemplate,
			data: struct {
				BlogID    string
				BlogTitle string
				CommentID string
				Comment   string
			}{
				BlogID:    "0190b0e8-0000-7000-8000-000000000001",
				BlogTitle: "Go in production",
				CommentID: "0190b0e8-0000-7000-8000-000000000002",
				Comment:   "<b>nice</b> read",
			},
			contains: "Go in production",
		},
		{
			name:         "unknown template name",
			templateName: "invalid_template.html",
			data:         nil,
			expectedErr:  ErrUnknownTemplate,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s, p, h, err := template.ParseTemplate(tc.templateName, tc.data)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
				assert.ErrorContains(t, err, tc.templateName)
				return
			}

			require.NoError(t, err)
			assert.Contains(t, s.String(), tc.contains)
			assert.Contains(t, p.String(), tc.contains)
			assert.Contains(t, h.String(), tc.contains)
			assert.NotContains(t, h.String(), "<b>nice</b>")
		})
	}
}

func TestParseTemplate_RenderError(t *testing.T) {
	template, err := NewTemplate()
	require.NoError(t, err)

	_, _, _, err = template.ParseTemplate(commentNotificationTemplate, struct{ Other string }{})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrUnknownTemplate)
}

func TestNewTemplate_ParsesEmbeddedFiles(t *testing.T) {
	template, err := NewTemplate()
	require.NoError(t, err)

	assert.Contains(t, template.sets, commentNotificationTemplate)
	for _, block := range mailBlocks {
		assert.NotNil(t, template.sets[commentNotificationTemplate].Lookup(block), block)
	}
}

func TestNewMailService(t *testing.T) {
	s, err := NewMailService(new(MockMessageConsumer), "localhost", "user", "password", "sender@example.com", 587, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(s.Close)

	assert.Equal(t, defaultBaseDelay, s.baseDelay)
}
