package handlers

import "testing"

func TestClampPage(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
	}{
		{"defaults pass through", 20, 0, 20, 0},
		{"negative limit resets to default", -1, 0, defaultPageSize, 0},
		{"zero limit resets to default", 0, 0, defaultPageSize, 0},
		{"limit is capped", 5000, 0, maxPageSize, 0},
		{"negative offset clamps to zero", 20, -10, 20, 0},
		{"valid values untouched", 50, 40, 50, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset := clampPage(tt.limit, tt.offset)
			if limit != tt.wantLimit {
				t.Errorf("limit = %d, want %d", limit, tt.wantLimit)
			}
			if offset != tt.wantOffset {
				t.Errorf("offset = %d, want %d", offset, tt.wantOffset)
			}
		})
	}
}
