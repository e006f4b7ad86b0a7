// Package monitor watches filesystem usage and raises alerts when it
// crosses configured thresholds.
package monitor

import (
	"fmt"

	"github.com/lumipallolabs/sweeper/internal/format"
	"github.com/lumipallolabs/sweeper/internal/model"
)

// EmergencyPercent is the usage at which every check alerts
const EmergencyPercent = 95.0

// Level is the alert level of a filesystem. Levels are ordered.
type Level int

const (
	LevelNormal Level = iota
	LevelWarning
	LevelCritical
	LevelEmergency
)

// LevelFor classifies percent against the warn and critical thresholds
func LevelFor(percent float64, warn, critical int) Level {
	switch {
	case percent >= EmergencyPercent:
		return LevelEmergency
	case percent >= float64(critical):
		return LevelCritical
	case percent >= float64(warn):
		return LevelWarning
	default:
		return LevelNormal
	}
}

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelCritical:
		return "critical"
	case LevelEmergency:
		return "emergency"
	default:
		return "normal"
	}
}

// Title is the notification headline for l
func (l Level) Title() string {
	switch l {
	case LevelWarning:
		return "⚠️ Disk Usage Warning"
	case LevelCritical:
		return "🔴 Disk Usage Critical"
	case LevelEmergency:
		return "🚨 DISK SPACE EMERGENCY"
	default:
		return "Disk Usage Normal"
	}
}

// Urgency maps l onto the freedesktop notification urgencies
func (l Level) Urgency() string {
	switch l {
	case LevelNormal:
		return "low"
	case LevelWarning:
		return "normal"
	default:
		return "critical"
	}
}

// Status is the usage of one mounted filesystem
type Status struct {
	MountPoint string
	Device     string
	model.DiskSpace
}

// Percent is the share of the filesystem in use
func (s Status) Percent() float64 {
	return s.UsedPercent()
}

// Body is the notification text for s
func (s Status) Body() string {
	return fmt.Sprintf("%s is %d%% full\nUsed: %s of %s\nAvailable: %s",
		s.MountPoint, int(s.Percent()),
		format.Size(s.UsedBytes()), format.Size(s.TotalBytes), format.Size(s.FreeBytes))
}

// StatMount reads the usage of the filesystem mounted at m
func StatMount(m Mount) (Status, error) {
	space, err := model.GetDiskSpace(m.Path)
	if err != nil {
		return Status{}, err
	}
	return Status{MountPoint: m.Path, Device: m.Device, DiskSpace: space}, nil
}
