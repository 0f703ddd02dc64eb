// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package id

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	type args struct {
		prefix string
	}
	tests := []struct {
		name    string
		args    args
		wantErr bool
		wantLen int
	}{
		{
			name: "valid",
			args: args{
				prefix: "id",
			},
			wantErr: false,
			wantLen: 2*DefaultEntropy + len("id_"),
		},
		{
			name: "no-prefix",
			args: args{
				prefix: "",
			},
			wantErr: false,
			wantLen: 2 * DefaultEntropy,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.args.prefix)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && tt.args.prefix != "" && !strings.HasPrefix(got, tt.args.prefix+"_") {
				t.Errorf("New() = %v, wanted it to start with %v", got, tt.args.prefix)
			}
			if len(got) != tt.wantLen {
				t.Errorf("New() = %v, with len of %d and wanted len of %v", got, len(got), tt.wantLen)
			}
		})
	}
}

func TestRandom(t *testing.T) {
	got, err := Random(43)
	if err != nil {
		t.Fatalf("Random() error = %v", err)
	}
	if len(got) != 86 {
		t.Errorf("Random() len = %d, want 86", len(got))
	}
	other, err := Random(43)
	if err != nil {
		t.Fatalf("Random() error = %v", err)
	}
	if got == other {
		t.Errorf("Random() returned the same value twice: %s", got)
	}
	if _, err := Random(0); err == nil {
		t.Errorf("Random(0) expected an error")
	}
}
