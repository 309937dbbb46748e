package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// run executes one invocation against the shared root command.
func run(t *testing.T, args ...string) {
	t.Helper()
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
}

func TestCommandsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")
	cfgPath := filepath.Join(dir, "config.toml")
	cfg := fmt.Sprintf("[storage]\nbackend = \"file\"\npath = %q\n", dataDir)
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))
	t.Setenv("POCKETLEDGER_CONFIG", cfgPath)

	run(t, "accounts", "add", "Everyday", "--balance", "250")
	run(t, "recurring", "add",
		"--amount", "9.99", "--category", "other",
		"--account", "Everyday", "--every", "monthly")
	run(t, "accounts", "list")
	run(t, "recurring", "list")
	run(t, "summary")

	// The opening balance lands in the ledger as a transaction, so the
	// generation pass every command runs cannot wipe it.
	txs, err := os.ReadFile(filepath.Join(dataDir, "transactions.json"))
	require.NoError(t, err)
	require.Contains(t, string(txs), "Opening balance")

	templates, err := os.ReadFile(filepath.Join(dataDir, "recurringTemplates.json"))
	require.NoError(t, err)
	require.Contains(t, string(templates), "monthly")
}
