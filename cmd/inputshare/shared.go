package main

import (
	"crypto/tls"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/edenriquez/inputshare/internal/config"
	"github.com/edenriquez/inputshare/internal/edge"
	"github.com/edenriquez/inputshare/internal/geometry"
	"github.com/edenriquez/inputshare/internal/logging"
	"github.com/edenriquez/inputshare/internal/mtls"
	"github.com/edenriquez/inputshare/internal/secmem"
	"github.com/edenriquez/inputshare/internal/session"
	"github.com/edenriquez/inputshare/internal/wire"
)

func secureStringFor(raw string) *secmem.SecureString {
	return secmem.NewSecureString(raw)
}

// tlsFlags are the `--identity-p12 --identity-pass --pin-sha256` flags §6
// defines for send/receive (not mock-receive, which never pins).
type tlsFlags struct {
	identityP12  string
	identityPass string
	pinSHA256    string
}

func addTLSFlags(cmd *cobra.Command, f *tlsFlags) {
	cmd.Flags().StringVar(&f.identityP12, "identity-p12", "", "path to this host's PKCS#12 identity bundle (required)")
	cmd.Flags().StringVar(&f.identityPass, "identity-pass", "", "passphrase for --identity-p12 (falls back to INPUTSHARE_IDENTITY_PASS)")
	cmd.Flags().StringVar(&f.pinSHA256, "pin-sha256", "", "expected SHA-256 fingerprint (hex) of the peer's leaf certificate (required)")
}

// resolveTLS validates the TLS flags, holds the passphrase in a
// zeroed-on-return secmem.SecureString while the identity bundle is
// decoded, and builds a client or server tls.Config.
func resolveTLS(f tlsFlags, server bool) (*tls.Config, error) {
	if f.identityP12 == "" {
		return nil, argErrorf("--identity-p12 is required")
	}
	if f.pinSHA256 == "" {
		return nil, argErrorf("--pin-sha256 is required")
	}

	raw := f.identityPass
	if raw == "" {
		raw = os.Getenv("INPUTSHARE_IDENTITY_PASS")
	}
	pass := secureStringFor(raw)
	defer pass.Zero()

	identity, err := mtls.LoadIdentity(f.identityP12, pass.String())
	if err != nil {
		return nil, fmt.Errorf("load identity: %w", err)
	}

	if server {
		return mtls.ServerConfig(identity, f.pinSHA256), nil
	}
	return mtls.ClientConfig(identity, f.pinSHA256), nil
}

func initLogging(cfg *config.Config) {
	if cfg.LogFile != "" {
		rw, err := logging.NewRotatingWriter(cfg.LogFile, cfg.LogMaxSizeMB, cfg.LogMaxBackups)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file %s: %v (logging to stdout)\n", cfg.LogFile, err)
		} else {
			logging.Init(cfg.LogFormat, cfg.LogLevel, logging.TeeWriter(os.Stdout, rw))
			return
		}
	}
	logging.Init(cfg.LogFormat, cfg.LogLevel, os.Stdout)
}

func deviceID(cfg *config.Config) string {
	if cfg.DeviceID != "" {
		return cfg.DeviceID
	}
	return uuid.NewString()
}

// buildSessionConfig assembles a session.Config from the loaded config,
// local display geometry, and which edge this invocation cares about:
// `send` sets senderZone from --edge and passes ZoneLeft as returnZone;
// `receive` sets returnZone from --edge and passes ZoneRight as senderZone.
// The zone of the role that does not run in this process is unused.
func buildSessionConfig(cfg *config.Config, geom *geometry.Geometry, senderZone, returnZone edge.Zone) session.Config {
	return session.Config{
		DeviceID:          deviceID(cfg),
		Geometry:          geom,
		EnterThresholdPx:  cfg.EnterThresholdPx,
		ExitThresholdPx:   cfg.ExitThresholdPx,
		DwellTime:         time.Duration(cfg.DwellTimeMs) * time.Millisecond,
		ActivationTimeout: time.Duration(cfg.ActivationTimeoutMs) * time.Millisecond,
		CoalesceInterval:  time.Duration(cfg.CoalesceIntervalMs) * time.Millisecond,
		SenderZone:        senderZone,
		ReturnZone:        returnZone,
	}
}

func loadGeometry() (*geometry.Geometry, error) {
	geom, err := geometry.Query()
	if err != nil {
		return nil, fmt.Errorf("query display geometry: %w", err)
	}
	return geom, nil
}

func printInputEvent(env *wire.Envelope) {
	var ev wire.InputEvent
	if err := wire.DecodePayload(env, &ev); err != nil {
		fmt.Printf("inputEvent <malformed: %v>\n", err)
		return
	}
	fmt.Printf("inputEvent seq=%d kind=%s dx=%d dy=%d button=%s buttonState=%s scrollDx=%.2f scrollDy=%.2f keycode=%d keyState=%s modifiers=%#x\n",
		env.SequenceNumber, ev.Kind, ev.DX, ev.DY, ev.Button, ev.ButtonState, ev.ScrollDX, ev.ScrollDY, ev.Keycode, ev.KeyState, ev.ModifierFlags)
}
