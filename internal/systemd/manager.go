// Package systemd manages the appliance's companion services over D-Bus.
package systemd

import (
	"context"
	"fmt"

	"github.com/coreos/go-systemd/v22/dbus"
)

// Units the control surface may touch. Everything else is refused at the
// API layer.
var managedUnits = map[string]string{
	"mediamtx": "mediamtx.service", // RTSP relay the pipelines publish to
	"mpd":      "mpd.service",      // player daemon driven by mpc
}

// UnitFor maps a public service name to its systemd unit. The second return
// is false for services outside the managed set.
func UnitFor(service string) (string, bool) {
	unit, ok := managedUnits[service]
	return unit, ok
}

// Manager handles systemd service lifecycle operations via D-Bus.
type Manager struct {
	conn *dbus.Conn
}

// NewManager creates a manager connected to the system bus.
func NewManager(ctx context.Context) (*Manager, error) {
	conn, err := dbus.NewSystemConnectionContext(ctx)
	if err != nil {
		return nil, err
	}
	return &Manager{conn: conn}, nil
}

// ServiceStatus retrieves the ActiveState of a unit, e.g. "active" or
// "inactive".
func (m *Manager) ServiceStatus(ctx context.Context, unit string) (string, error) {
	prop, err := m.conn.GetUnitPropertyContext(ctx, unit, "ActiveState")
	if err != nil {
		return "", err
	}
	state, ok := prop.Value.Value().(string)
	if !ok {
		return "", fmt.Errorf("unexpected ActiveState type %T", prop.Value.Value())
	}
	return state, nil
}

// RestartService restarts a unit using the replace mode.
func (m *Manager) RestartService(ctx context.Context, unit string) error {
	_, err := m.conn.RestartUnitContext(ctx, unit, "replace", nil)
	return err
}

// Close cleanly closes the D-Bus connection.
func (m *Manager) Close() {
	if m.conn != nil {
		m.conn.Close()
	}
}
