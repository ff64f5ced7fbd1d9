package mailservice

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestSendEmail(t *testing.T) {
	testCases := []struct {
		name      string
		recipient string
		parseErr  error
		dialErr   error
		expectErr error
		dials     bool
	}{
		{
			name:      "success",
			recipient: "test@example.com",
			dials:     true,
		},
		{
			name:      "no recipient",
			recipient: "",
			expectErr: ErrNoRecipient,
		},
		{
			name:      "template error",
			recipient: "test@example.com",
			parseErr:  errors.New("bad template"),
		},
		{
			name:      "dial error",
			recipient: "test@example.com",
			dialErr:   errors.New("connection refused"),
			dials:     true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			mockParser := new(MockTemplate)
			mockDialer := new(MockDialer)

			mailer := &Mail{
				dialer: mockDialer,
				parser: mockParser,
				sender: "sender@example.com",
			}

			if tc.recipient != "" {
				if tc.parseErr != nil {
					mockParser.On("ParseTemplate", "template.html", mock.Anything).Return(nil, nil, nil, tc.parseErr)
				} else {
					subject := bytes.NewBufferString("Test Subject")
					plainBody := bytes.NewBufferString("Test Plain Body")
					htmlBody := bytes.NewBufferString("Test HTML Body")
					mockParser.On("ParseTemplate", "template.html", mock.Anything).Return(subject, plainBody, htmlBody, nil)
				}
			}

			if tc.dials {
				mockDialer.On("DialAndSend", mock.AnythingOfType("[]*mail.Message")).Return(tc.dialErr)
			}

			err := mailer.send(tc.recipient, nil, "template.html")

			switch {
			case tc.expectErr != nil:
				assert.ErrorIs(t, err, tc.expectErr)
			case tc.parseErr != nil:
				assert.ErrorIs(t, err, tc.parseErr)
			case tc.dialErr != nil:
				assert.ErrorIs(t, err, tc.dialErr)
			default:
				assert.NoError(t, err)
			}

			mockParser.AssertExpectations(t)
			mockDialer.AssertExpectations(t)
		})
	}
}
