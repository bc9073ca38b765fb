package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseURL(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    string
		wantErr bool
	}{
		{
			name: "explicit url wins",
			env:  map[string]string{"DATABASE_URL": "postgres://x", "DB_USER": "u", "DB_NAME": "n"},
			want: "postgres://x",
		},
		{
			name: "assembled from parts",
			env:  map[string]string{"DB_USER": "app", "DB_PASSWORD": "pw", "DB_NAME": "hub", "DB_HOST": "db", "DB_PORT": "6543"},
			want: "postgresql://app:pw@db:6543/hub?sslmode=disable",
		},
		{
			name:    "missing",
			env:     map[string]string{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"DATABASE_URL", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_HOST", "DB_PORT", "DB_SSLMODE"} {
				t.Setenv(key, tt.env[key])
			}

			got, err := databaseURL()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
