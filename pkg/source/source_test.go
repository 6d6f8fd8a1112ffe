package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrisonrobin/taskdump/pkg/failure"
	"github.com/harrisonrobin/taskdump/pkg/intheam"
	"github.com/harrisonrobin/taskdump/pkg/taskwarrior"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		wantName string
		wantCode failure.Code
	}{
		{name: "default is local", cfg: Config{}, wantName: taskwarrior.Name},
		{name: "local", cfg: Config{Kind: KindLocal, TaskBinary: "/usr/local/bin/task"}, wantName: taskwarrior.Name},
		{name: "remote", cfg: Config{Kind: KindRemote, APIKey: "k"}, wantName: intheam.Name},
		{name: "remote with url", cfg: Config{Kind: KindRemote, APIKey: "k", APIURL: "https://tasks.example.org"}, wantName: intheam.Name},
		{name: "remote without key", cfg: Config{Kind: KindRemote}, wantCode: failure.CodeConfigInvalid},
		{name: "remote with relative url", cfg: Config{Kind: KindRemote, APIKey: "k", APIURL: "inthe.am"}, wantCode: failure.CodeConfigInvalid},
		{name: "unknown", cfg: Config{Kind: "todoist"}, wantCode: failure.CodeConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := New(tt.cfg)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, src.Name())
		})
	}
}
