package bootstrap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Domenick1991/railbooking/config"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, swaggerFile), []byte(`{"swagger":"2.0"}`), 0o600))
	return &config.Config{
		HTTP: config.HTTPConfig{Address: "127.0.0.1:0", SwaggerDir: dir},
		GRPC: config.GRPCConfig{Address: "127.0.0.1:0"},
	}
}
