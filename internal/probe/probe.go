package probe

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/yeka/zip"

	"zipseal/internal/logging"
)

// State is the classification of an archive's protection.
type State int

const (
	StateUnknown State = iota
	StateProtected
	StateNotProtected
	StateEmpty
	StateInvalid
)

func (s State) String() string {
	switch s {
	case StateProtected:
		return "protected"
	case StateNotProtected:
		return "not_protected"
	case StateEmpty:
		return "empty"
	case StateInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

var passwordMarkers = []string{
	"bad password",
	"password required",
	"invalid password",
}

// IsPasswordError reports whether err is the failure a reader gives for an
// entry that needs a password. Decompression and checksum failures are not.
func IsPasswordError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, zip.ErrPassword) || errors.Is(err, zip.ErrAuthentication) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range passwordMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// Prober inspects archives without modifying them.
type Prober struct {
	logger *slog.Logger
}

// New returns a prober logging through logger.
func New(logger *slog.Logger) *Prober {
	return &Prober{logger: logging.NewComponentLogger(logger, "probe")}
}

// IsPasswordProtected is true only when Probe reports StateProtected.
func (p *Prober) IsPasswordProtected(ctx context.Context, archivePath string) bool {
	return p.Probe(ctx, archivePath) == StateProtected
}

// Probe classifies archivePath. It never returns an error; problems are
// logged and mapped to StateInvalid or StateUnknown.
func (p *Prober) Probe(ctx context.Context, archivePath string) (state State) {
	name := filepath.Base(archivePath)
	defer func() {
		if r := recover(); r != nil {
			logging.ErrorWithContext(ctx, p.logger, "error checking password protection", "probe_failed",
				logging.String(logging.FieldArchive, name),
				logging.Any("panic", r),
			)
			state = StateUnknown
		}
	}()

	file, err := os.Open(archivePath)
	if err != nil {
		logging.ErrorWithContext(ctx, p.logger, "error checking password protection", "probe_failed",
			logging.String(logging.FieldArchive, name),
			logging.Error(err),
		)
		return StateUnknown
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		logging.ErrorWithContext(ctx, p.logger, "error checking password protection", "probe_failed",
			logging.String(logging.FieldArchive, name),
			logging.Error(err),
		)
		return StateUnknown
	}

	reader, err := zip.NewReader(file, info.Size())
	if err != nil {
		logging.WarnWithContext(ctx, p.logger, "not a valid zip archive", "archive_invalid",
			logging.String(logging.FieldArchive, name),
			logging.Error(err),
			logging.String(logging.FieldImpact, "archive treated as not protected"),
		)
		return StateInvalid
	}
	if len(reader.File) == 0 {
		return StateEmpty
	}

	first := reader.File[0]
	err = readFirstByte(first)
	switch {
	case err == nil && first.IsEncrypted():
		// An empty password slipped past the legacy ZipCrypto check byte.
		return StateProtected
	case err == nil:
		return StateNotProtected
	case IsPasswordError(err):
		return StateProtected
	default:
		p.logger.DebugContext(ctx, "first entry unreadable without password",
			logging.String(logging.FieldArchive, name),
			logging.String("entry", first.Name),
			logging.Error(err),
		)
		return StateNotProtected
	}
}

func readFirstByte(f *zip.File) error {
	if f.IsEncrypted() {
		f.SetPassword("")
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	var buf [1]byte
	if _, err := rc.Read(buf[:]); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
