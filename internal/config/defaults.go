package config

import "runtime"

const (
	defaultDumpDir        = "dump"
	defaultStateDir       = "~/.local/share/zipseal"
	defaultLogDir         = "~/.local/share/zipseal/logs"
	defaultExtension      = ".zip"
	defaultBackupSuffix   = ".backup"
	defaultSidecarDir     = ".ts"
	defaultSidecarSuffix  = ".json"
	defaultSecretEnv      = "REPO_DUMP_ZIP_PASS"
	defaultToolTimeout    = 600
	defaultJournalEnabled = true
	defaultJournalName    = "journal.db"
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DumpDir:  defaultDumpDir,
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Archive: Archive{
			Extension:     defaultExtension,
			BackupSuffix:  defaultBackupSuffix,
			SidecarDir:    defaultSidecarDir,
			SidecarSuffix: defaultSidecarSuffix,
		},
		Secret: Secret{
			Env: defaultSecretEnv,
		},
		Tool: Tool{
			Candidates:     DefaultToolCandidates(runtime.GOOS),
			TimeoutSeconds: defaultToolTimeout,
		},
		Journal: Journal{
			Enabled: defaultJournalEnabled,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// DefaultToolCandidates lists where 7-Zip is looked for on the given
// platform. Names resolved through PATH come first, conventional install
// locations after. ${USERNAME} is expanded during normalization.
func DefaultToolCandidates(goos string) []string {
	candidates := []string{"7z", "7zz", "7za"}
	switch goos {
	case "windows":
		candidates = append(candidates,
			`C:\Users\${USERNAME}\scoop\apps\7zip\current\7z.exe`,
			`C:\Program Files\7-Zip\7z.exe`,
			`C:\Program Files (x86)\7-Zip\7z.exe`,
		)
	case "darwin":
		candidates = append(candidates,
			"/opt/homebrew/bin/7zz",
			"/opt/homebrew/bin/7z",
			"/usr/local/bin/7zz",
			"/usr/local/bin/7z",
		)
	default:
		candidates = append(candidates,
			"/usr/bin/7z",
			"/usr/lib/p7zip/7z",
			"/snap/bin/7z",
		)
	}
	return candidates
}
