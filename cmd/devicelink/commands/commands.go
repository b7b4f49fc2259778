// Package commands implements the devicelink CLI commands.
package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"github.com/devicelink/devicelink-go/pkg/connection"
	"github.com/devicelink/devicelink-go/pkg/deviceid"
	"github.com/devicelink/devicelink-go/pkg/introspection"
	"github.com/devicelink/devicelink-go/pkg/log"
	"github.com/devicelink/devicelink-go/pkg/model"
)

// ErrUsage is returned when a command receives the wrong arguments.
var ErrUsage = errors.New("usage")

// ErrUnknownCommand is returned by Run for names it does not handle.
var ErrUnknownCommand = errors.New("unknown command")

// DefaultBackoffSteps is the sequence length printed by "backoff" without n.
const DefaultBackoffSteps = 8

// Env is the state shared by all commands.
type Env struct {
	Registry *introspection.Registry
	Out      io.Writer

	// Backoff supplies defaults for the backoff command.
	Backoff connection.BackoffConfig
}

// Usage lists the commands understood by Run.
const Usage = `Commands:
  introspection                          List registered interfaces
  validate <iface> <path> <json> [ts]    Validate a payload (ts is RFC 3339)
  unset <iface> <path>                   Validate a property unset
  reliability <iface> <path>             Show the reliability of a path
  deviceid [namespace data]              Generate a device id
  backoff [base max [n [jitter]]]        Print a backoff sequence (seconds)
  events <file> [invalid]                Print a captured event log
`

// Run executes the named command.
func Run(env *Env, name string, args []string) error {
	switch strings.ToLower(name) {
	case "introspection", "ls":
		return RunIntrospection(env)
	case "validate", "v":
		return RunValidate(env, args)
	case "unset":
		return RunUnset(env, args)
	case "reliability":
		return RunReliability(env, args)
	case "deviceid":
		return RunDeviceID(env.Out, args)
	case "backoff":
		return RunBackoff(env, args)
	case "events":
		return RunEvents(env.Out, args)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
}

// RunIntrospection prints the introspection string and every mapping.
func RunIntrospection(env *Env) error {
	fmt.Fprintf(env.Out, "Introspection: %s\n", env.Registry.String())

	tw := tabwriter.NewWriter(env.Out, 0, 4, 2, ' ', 0)
	for _, iface := range env.Registry.All() {
		fmt.Fprintf(tw, "\n%s\t%d.%d\t%s\t%s\t%s\n", iface.Name(), iface.VersionMajor(), iface.VersionMinor(),
			iface.Type(), iface.Ownership(), iface.Aggregation())
		for _, m := range iface.Mappings() {
			var flags []string
			if m.ExplicitTimestamp() {
				flags = append(flags, "explicit_timestamp")
			}
			if m.AllowUnset() {
				flags = append(flags, "allow_unset")
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", m.Endpoint(), m.Type(), m.Reliability(), strings.Join(flags, ","))
		}
	}
	return tw.Flush()
}

// RunValidate validates a JSON payload against an interface. The direction
// follows the interface ownership.
func RunValidate(env *Env, args []string) error {
	if len(args) < 3 || len(args) > 4 {
		return fmt.Errorf("%w: validate <iface> <path> <json> [rfc3339-timestamp]", ErrUsage)
	}
	name, path := args[0], args[1]

	iface := env.Registry.Get(name)
	if iface == nil {
		return fmt.Errorf("%w: %s", model.ErrInterfaceNotFound, name)
	}

	payload, err := DecodePayload(iface, path, args[2])
	if err != nil {
		return err
	}

	var ts time.Time
	if len(args) == 4 {
		ts, err = time.Parse(time.RFC3339Nano, args[3])
		if err != nil {
			return fmt.Errorf("%w: timestamp: %v", ErrUsage, err)
		}
	}

	if iface.IsServerOwned() {
		err = env.Registry.ValidateIncoming(name, path, payload, ts)
	} else {
		err = env.Registry.ValidateOutgoing(name, path, payload, ts)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(env.Out, "OK %s%s %s\n", name, path, FormatPayload(payload))
	return nil
}

// RunUnset validates a property unset.
func RunUnset(env *Env, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: unset <iface> <path>", ErrUsage)
	}
	name, path := args[0], args[1]

	iface := env.Registry.Get(name)
	if iface == nil {
		return fmt.Errorf("%w: %s", model.ErrInterfaceNotFound, name)
	}

	var err error
	if iface.IsServerOwned() {
		err = env.Registry.ValidateIncomingUnset(name, path)
	} else {
		err = env.Registry.ValidateUnset(name, path)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(env.Out, "OK unset %s%s\n", name, path)
	return nil
}

// RunReliability prints the reliability of a path.
func RunReliability(env *Env, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: reliability <iface> <path>", ErrUsage)
	}
	r, err := env.Registry.Reliability(args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(env.Out, "%s (%d)\n", r, r)
	return nil
}

// RunDeviceID prints a random device id, or the name-based id of data in
// namespace.
func RunDeviceID(w io.Writer, args []string) error {
	switch len(args) {
	case 0:
		id, err := deviceid.Random()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, id)
	case 2:
		ns, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("%w: namespace: %v", ErrUsage, err)
		}
		fmt.Fprintln(w, deviceid.Generate(ns, args[1]))
	default:
		return fmt.Errorf("%w: deviceid [namespace data]", ErrUsage)
	}
	return nil
}

// RunBackoff prints the delays a reconnect loop would wait.
func RunBackoff(env *Env, args []string) error {
	cfg := env.Backoff
	n := DefaultBackoffSteps

	if len(args) == 1 || len(args) > 4 {
		return fmt.Errorf("%w: backoff [base max [n [jitter]]]", ErrUsage)
	}
	if len(args) >= 2 {
		var err error
		if cfg.Base, err = strconv.ParseFloat(args[0], 64); err != nil {
			return fmt.Errorf("%w: base: %v", ErrUsage, err)
		}
		if cfg.Max, err = strconv.ParseFloat(args[1], 64); err != nil {
			return fmt.Errorf("%w: max: %v", ErrUsage, err)
		}
		cfg.Jitter = false
	}
	if len(args) >= 3 {
		v, err := strconv.Atoi(args[2])
		if err != nil || v < 0 {
			return fmt.Errorf("%w: n must be a non-negative integer", ErrUsage)
		}
		n = v
	}
	if len(args) == 4 {
		v, err := strconv.ParseBool(args[3])
		if err != nil {
			return fmt.Errorf("%w: jitter: %v", ErrUsage, err)
		}
		cfg.Jitter = v
	}

	b := connection.NewBackoffWithConfig(cfg)
	fmt.Fprintf(env.Out, "base=%g max=%g jitter=%t\n", b.Base(), b.Max(), b.Jitter())
	for i := 1; i <= n; i++ {
		ceiling := b.Ceiling()
		delay := b.Next()
		fmt.Fprintf(env.Out, "%3d  ceiling=%-8g delay=%s\n", i, ceiling, connection.Seconds(delay))
	}
	return nil
}

// RunEvents prints the events of a captured log file.
func RunEvents(w io.Writer, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: events <file> [invalid]", ErrUsage)
	}

	var filter log.Filter
	if len(args) == 2 {
		if args[1] != "invalid" {
			return fmt.Errorf("%w: events <file> [invalid]", ErrUsage)
		}
		filter.InvalidOnly = true
	}

	events, err := log.ReadAll(args[0], filter)
	if err != nil {
		return err
	}
	for _, ev := range events {
		FormatEvent(w, ev)
	}
	fmt.Fprintf(w, "%d events\n", len(events))
	return nil
}
