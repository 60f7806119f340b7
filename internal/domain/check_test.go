package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSafetyCheck_Approve(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		from    ApprovalStatus
		wantErr bool
	}{
		{"pending to approved", ApprovalStatusPending, false},
		{"approved stays approved", ApprovalStatusApproved, true},
		{"rejected cannot be approved", ApprovalStatusRejected, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := &SafetyCheck{ApprovalStatus: tt.from}
			err := check.Approve(now)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, ECONFLICT, ErrorCode(err))
				assert.Equal(t, tt.from, check.ApprovalStatus)
				assert.Nil(t, check.ApprovedAt)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, ApprovalStatusApproved, check.ApprovalStatus)
				if assert.NotNil(t, check.ApprovedAt) {
					assert.Equal(t, now, *check.ApprovedAt)
				}
			}
		})
	}
}

func TestSafetyCheck_Reject(t *testing.T) {
	tests := []struct {
		name     string
		from     ApprovalStatus
		reason   string
		wantErr  bool
		wantCode string
	}{
		{"pending to rejected", ApprovalStatusPending, "صور غير واضحة", false, ""},
		{"empty reason refused", ApprovalStatusPending, "", true, EINVALID},
		{"approved cannot be rejected", ApprovalStatusApproved, "late", true, ECONFLICT},
		{"rejected stays rejected", ApprovalStatusRejected, "again", true, ECONFLICT},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := &SafetyCheck{ApprovalStatus: tt.from}
			err := check.Reject(tt.reason)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.wantCode, ErrorCode(err))
				assert.Equal(t, tt.from, check.ApprovalStatus)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, ApprovalStatusRejected, check.ApprovalStatus)
				assert.Equal(t, tt.reason, check.RejectionReason)
			}
		})
	}
}

func TestIsAllowedUploadExtension(t *testing.T) {
	for _, ext := range []string{"png", "jpg", "jpeg", "heic", "heif"} {
		assert.True(t, IsAllowedUploadExtension(ext), ext)
	}
	for _, ext := range []string{"gif", "webp", "pdf", "exe", ""} {
		assert.False(t, IsAllowedUploadExtension(ext), ext)
	}
}
