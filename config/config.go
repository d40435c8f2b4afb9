// Package config loads the robot description: drive geometry, motion
// limits, encoder and motor calibration, and the host link settings.
package config

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"diffbot/calibration"
	"diffbot/kinematics"
)

// ErrInvalid is the root of every validation error
var ErrInvalid = errors.New("invalid robot configuration")

// invalidError reports a validation failure caused by a lower-level error.
// It matches ErrInvalid and still unwraps to the cause.
type invalidError struct {
	msg   string
	cause error
}

func (e *invalidError) Error() string {
	return ErrInvalid.Error() + ": " + e.msg + ": " + e.cause.Error()
}

func (e *invalidError) Is(target error) bool { return target == ErrInvalid }

func (e *invalidError) Unwrap() error { return e.cause }

func invalid(cause error, msg string) error {
	return errors.WithStack(&invalidError{msg: msg, cause: cause})
}

// Format names a configuration encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// RobotConfig is the complete robot description
type RobotConfig struct {
	Name          string              `json:"name" yaml:"name"`
	Geometry      kinematics.Geometry `json:"geometry" yaml:"geometry"`
	Limits        Limits              `json:"limits" yaml:"limits"`
	Encoder       Encoder             `json:"encoder" yaml:"encoder"`
	Calibration   Calibration         `json:"calibration" yaml:"calibration"`
	Link          Link                `json:"link" yaml:"link"`
	ControlRateHz float64             `json:"control_rate_hz" yaml:"control_rate_hz"`
}

// Limits bounds the body velocity channels
type Limits struct {
	MaxLinearVelocity  float64 `json:"max_linear_velocity" yaml:"max_linear_velocity"`   // m/s
	MaxLinearAccel     float64 `json:"max_linear_accel" yaml:"max_linear_accel"`         // m/s^2
	MaxAngularVelocity float64 `json:"max_angular_velocity" yaml:"max_angular_velocity"` // rad/s
	MaxAngularAccel    float64 `json:"max_angular_accel" yaml:"max_angular_accel"`       // rad/s^2
}

// Encoder describes the wheel encoders
type Encoder struct {
	CountsPerRev uint32  `json:"counts_per_rev" yaml:"counts_per_rev"`
	HeadingBias  float64 `json:"heading_bias" yaml:"heading_bias"`
}

// WheelCalibration maps wheel velocity to motor duty. Velocity in rad/s is
// multiplied by VelocityScale to get the table input; the table output is
// the duty magnitude and takes the sign of the velocity.
type WheelCalibration struct {
	VelocityScale float64  `json:"velocity_scale" yaml:"velocity_scale"`
	Velocity      []int16  `json:"velocity" yaml:"velocity"`
	Duty          []uint16 `json:"duty" yaml:"duty"`
}

// Calibration holds one table per wheel
type Calibration struct {
	Left  WheelCalibration `json:"left" yaml:"left"`
	Right WheelCalibration `json:"right" yaml:"right"`
}

// Link configures the connection to the controller
type Link struct {
	Device        string `json:"device" yaml:"device"`
	Baud          int    `json:"baud" yaml:"baud"`
	ReadTimeoutMS int    `json:"read_timeout_ms" yaml:"read_timeout_ms"`
	I2CAddress    uint16 `json:"i2c_address" yaml:"i2c_address"`
}

// Load parses a configuration, applies defaults and validates it
func Load(data []byte, format Format) (*RobotConfig, error) {
	var cfg RobotConfig

	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &cfg)
	case FormatYAML:
		err = yaml.Unmarshal(data, &cfg)
	default:
		return nil, errors.Errorf("unknown config format %q", format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "error parsing %s config", format)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFile reads a configuration file; the format follows the extension
func LoadFile(path string) (*RobotConfig, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading config %s", path)
	}

	cfg, err := Load(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// FormatFromPath picks the format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", errors.Errorf("unsupported config extension %q", filepath.Ext(path))
	}
}

// applyDefaults fills in missing configuration values
func applyDefaults(cfg *RobotConfig) {
	if cfg.Name == "" {
		cfg.Name = "diffbot"
	}

	// Velocity limits default to what the wheels can do
	if cfg.Limits.MaxLinearVelocity == 0 {
		cfg.Limits.MaxLinearVelocity = cfg.Geometry.MaxLinearVelocity()
	}
	if cfg.Limits.MaxAngularVelocity == 0 && cfg.Geometry.TrackWidth > 0 {
		cfg.Limits.MaxAngularVelocity = cfg.Geometry.MaxAngularVelocity()
	}
	if cfg.Limits.MaxLinearAccel == 0 {
		cfg.Limits.MaxLinearAccel = 0.5 // m/s^2
	}
	if cfg.Limits.MaxAngularAccel == 0 {
		cfg.Limits.MaxAngularAccel = 2.0 // rad/s^2
	}

	if cfg.Encoder.CountsPerRev == 0 {
		cfg.Encoder.CountsPerRev = 1440
	}
	// CalcHeading uses pi rather than 2*pi; with the wheel track as the
	// width a bias of 2 gives the geometric heading change.
	if cfg.Encoder.HeadingBias == 0 {
		cfg.Encoder.HeadingBias = 2.0
	}

	for _, wheel := range []*WheelCalibration{&cfg.Calibration.Left, &cfg.Calibration.Right} {
		if wheel.VelocityScale == 0 {
			wheel.VelocityScale = 1000.0 // mrad/s
		}
	}

	if cfg.Link.Device == "" {
		cfg.Link.Device = "/dev/ttyACM0"
	}
	if cfg.Link.Baud == 0 {
		cfg.Link.Baud = 250000
	}
	if cfg.Link.ReadTimeoutMS == 0 {
		cfg.Link.ReadTimeoutMS = 100
	}
	if cfg.Link.I2CAddress == 0 {
		cfg.Link.I2CAddress = 0x42
	}

	if cfg.ControlRateHz == 0 {
		cfg.ControlRateHz = 50
	}
}

// Validate checks the configuration and both calibration tables
func (c *RobotConfig) Validate() error {
	if err := c.Geometry.Validate(); err != nil {
		return invalid(err, "geometry")
	}

	positive := map[string]float64{
		"max_linear_velocity":  c.Limits.MaxLinearVelocity,
		"max_linear_accel":     c.Limits.MaxLinearAccel,
		"max_angular_velocity": c.Limits.MaxAngularVelocity,
		"max_angular_accel":    c.Limits.MaxAngularAccel,
		"control_rate_hz":      c.ControlRateHz,
		"heading_bias":         c.Encoder.HeadingBias,
	}
	for name, v := range positive {
		if !(v > 0) {
			return errors.Wrapf(ErrInvalid, "%s must be positive, got %v", name, v)
		}
	}
	if c.Link.I2CAddress > 0x7F {
		return errors.Wrapf(ErrInvalid, "i2c_address 0x%X is not a 7-bit address", c.Link.I2CAddress)
	}

	if _, _, err := c.Tables(); err != nil {
		return err
	}
	return nil
}

// Tables builds the left and right calibration tables
func (c *RobotConfig) Tables() (left, right *calibration.Table, err error) {
	for name, wheel := range map[string]WheelCalibration{"left": c.Calibration.Left, "right": c.Calibration.Right} {
		for i, d := range wheel.Duty {
			if d > math.MaxInt16 {
				return nil, nil, errors.Wrapf(ErrInvalid, "%s calibration: duty %d (%d) above %d", name, i, d, math.MaxInt16)
			}
		}
	}

	left, err = calibration.NewTable(c.Calibration.Left.Velocity, c.Calibration.Left.Duty)
	if err != nil {
		return nil, nil, invalid(err, "left calibration")
	}
	right, err = calibration.NewTable(c.Calibration.Right.Velocity, c.Calibration.Right.Duty)
	if err != nil {
		return nil, nil, invalid(err, "right calibration")
	}
	return left, right, nil
}

// ControlPeriod is the time between control updates
func (c *RobotConfig) ControlPeriod() time.Duration {
	return time.Duration(float64(time.Second) / c.ControlRateHz)
}

// Default returns the reference robot configuration
func Default() *RobotConfig {
	cal := WheelCalibration{
		VelocityScale: 1000.0,
		Velocity:      []int16{-10000, -6000, -2000, -500, 0, 500, 2000, 6000, 10000},
		Duty:          []uint16{1000, 640, 260, 110, 0, 110, 260, 640, 1000},
	}

	cfg := &RobotConfig{
		Name: "diffbot",
		Geometry: kinematics.Geometry{
			WheelRadius:             0.0775,
			TrackWidth:              0.3968,
			MaxWheelAngularVelocity: 10.0,
		},
		Encoder: Encoder{
			CountsPerRev: 1440,
			HeadingBias:  2.0,
		},
		Calibration: Calibration{
			Left:  cal,
			Right: cloneCalibration(cal),
		},
	}
	applyDefaults(cfg)
	return cfg
}

func cloneCalibration(w WheelCalibration) WheelCalibration {
	return WheelCalibration{
		VelocityScale: w.VelocityScale,
		Velocity:      append([]int16(nil), w.Velocity...),
		Duty:          append([]uint16(nil), w.Duty...),
	}
}
