// Package runner executes a loaded batch of device jobs: one device at a
// time, connect, apply the selected command set, optionally verify, then save
// or skip. A failure on one device is reported and the batch moves on.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/confpush/confpush/pkg/cli"
	"github.com/confpush/confpush/pkg/config"
	"github.com/confpush/confpush/pkg/credentials"
	"github.com/confpush/confpush/pkg/inventory"
	"github.com/confpush/confpush/pkg/platform"
	"github.com/confpush/confpush/pkg/report"
	"github.com/confpush/confpush/pkg/session"
	"github.com/confpush/confpush/pkg/util"
)

// Session is the device conversation the runner drives. Satisfied by
// *session.Session; faked in tests.
type Session interface {
	Send(value string, opts ...session.SendOption) (string, error)
	Prompt() string
	Close() error
}

// Dialer opens a ready-to-use session for a job. The default dialer picks
// SSH or Telnet from the dialect; tests substitute scripted sessions.
type Dialer func(ctx context.Context, job *inventory.DeviceJob, d *platform.Dialect) (Session, error)

// ConfirmFunc asks the operator whether to save. Only called in verify mode.
type ConfirmFunc func(device string) (bool, error)

// Options selects which command set runs and how saving is decided.
// Exactly one save behavior applies per run: immediate save (default),
// confirmed save (ConfirmSave), or rollback with save (Rollback).
type Options struct {
	Rollback    bool // send rollback commands instead of implementation
	ConfirmSave bool // prompt before saving
	DryRun      bool // print the command plan, contact nothing
}

// Runner drives a batch sequentially. One connection is open at a time.
type Runner struct {
	opts  Options
	cfg   *config.Config
	creds credentials.Credentials
	log   report.Logger

	// Out receives progress and verification output. Defaults to stdout.
	Out io.Writer
	// Dial and Confirm are replaceable for tests.
	Dial    Dialer
	Confirm ConfirmFunc
}

// New creates a runner with the default SSH/Telnet dialer and interactive
// save confirmation.
func New(opts Options, cfg *config.Config, creds credentials.Credentials, log report.Logger) *Runner {
	r := &Runner{
		opts:  opts,
		cfg:   cfg,
		creds: creds,
		log:   log,
		Out:   os.Stdout,
	}
	r.Dial = r.dialDevice
	r.Confirm = confirmSave
	return r
}

// Run processes jobs in order and returns one event per job. Events are also
// written to the run log as they happen.
func (r *Runner) Run(ctx context.Context, jobs []inventory.DeviceJob) []*report.Event {
	events := make([]*report.Event, 0, len(jobs))
	for i := range jobs {
		if ctx.Err() != nil {
			break
		}
		ev := r.runJob(ctx, &jobs[i])
		if err := r.log.Log(ev); err != nil {
			util.Warnf("writing run log: %v", err)
		}
		events = append(events, ev)
	}
	return events
}

func (r *Runner) mode() string {
	if r.opts.Rollback {
		return "rollback"
	}
	return "implement"
}

func (r *Runner) runJob(ctx context.Context, job *inventory.DeviceJob) *report.Event {
	ev := &report.Event{
		Timestamp: time.Now(),
		Device:    job.Name,
		OSType:    string(job.OSType),
		Mode:      r.mode(),
	}
	log := util.WithDevice(job.Name)

	dialect, err := platform.ForOSType(job.OSType)
	if err != nil {
		ev.Error = err.Error()
		return ev
	}

	cmds := job.ImplementationCmds
	if r.opts.Rollback {
		cmds = job.RollbackCmds
		if len(cmds) == 0 {
			ev.Error = "no rollback commands defined"
			log.Errorf("Rollback requested but the import file has no rollback commands")
			return ev
		}
	}

	if r.opts.DryRun {
		r.printPlan(job, dialect, cmds)
		ev.Success = true
		return ev
	}

	fmt.Fprintf(r.Out, "Connecting to %s (%s)...\n", job.Host(), job.OSType)
	sess, err := r.Dial(ctx, job, dialect)
	if err != nil {
		log.Errorf("Connection failed: %v", err)
		fmt.Fprintf(r.Out, "  %s %v\n", cli.Red("connection failed:"), err)
		ev.Error = err.Error()
		return ev
	}
	defer sess.Close()
	log.Infof("Connected")

	output, saved, err := r.execute(sess, dialect, job, cmds)
	ev.Output = output
	ev.Saved = saved
	if err != nil {
		log.Errorf("Failed: %v", err)
		ev.Error = err.Error()
		return ev
	}

	if dialect.LogoutCmd != "" {
		_, _ = sess.Send(dialect.LogoutCmd, session.NoWait())
	}

	log.Infof("Completed (%s mode, saved=%v)", ev.Mode, saved)
	ev.Success = true
	return ev
}

// execute runs the whole conversation on an open session: escalate, apply
// the command set in config mode, verify, then decide about saving.
func (r *Runner) execute(sess Session, d *platform.Dialect, job *inventory.DeviceJob, cmds []string) (output string, saved bool, err error) {
	var out strings.Builder

	if err := r.escalate(sess, d); err != nil {
		return out.String(), false, err
	}

	for _, cmd := range d.InitCmds {
		if _, err := sess.Send(cmd); err != nil {
			return out.String(), false, fmt.Errorf("init command %q: %w", cmd, err)
		}
	}

	fmt.Fprintln(r.Out, "Sending commands...")
	if _, err := sess.Send(d.ConfigEnterCmd, session.ResetPrompt()); err != nil {
		return out.String(), false, fmt.Errorf("entering config mode: %w", err)
	}
	for _, cmd := range cmds {
		// Config submodes rewrite the prompt, so frame loosely here.
		resp, err := sess.Send(cmd, session.WaitFor(d.PromptPattern))
		out.WriteString(resp)
		if err != nil {
			return out.String(), false, fmt.Errorf("sending %q: %w", cmd, err)
		}
		if d.RejectedCommand(resp) {
			return out.String(), false, &util.CommandError{Device: job.Name, Command: cmd, Output: resp}
		}
	}

	if d.SaveInConfigMode {
		saved, err := r.commitAndExit(sess, d, job, &out)
		return out.String(), saved, err
	}

	if _, err := sess.Send(d.ConfigExitCmd, session.ResetPrompt()); err != nil {
		return out.String(), false, fmt.Errorf("leaving config mode: %w", err)
	}

	for _, cmd := range job.VerificationCmds {
		resp, err := sess.Send(cmd)
		if err != nil {
			return out.String(), false, fmt.Errorf("verification %q: %w", cmd, err)
		}
		fmt.Fprintf(r.Out, "\n%s\n%s\n", cli.Bold(job.Name+"> "+cmd), resp)
		out.WriteString(resp)
	}

	if r.opts.ConfirmSave {
		ok, err := r.Confirm(job.Name)
		if err != nil {
			return out.String(), false, fmt.Errorf("save confirmation: %w", err)
		}
		if !ok {
			util.WithDevice(job.Name).Warnf("Save declined; running config left unsaved")
			return out.String(), false, nil
		}
	}

	resp, err := sess.Send(d.SaveCmd)
	if err != nil {
		return out.String(), false, fmt.Errorf("save: %w", err)
	}
	if d.RejectedCommand(resp) {
		return out.String(), false, &util.CommandError{Device: job.Name, Command: d.SaveCmd, Output: resp}
	}
	return out.String(), true, nil
}

// commitAndExit finishes the conversation on platforms that persist changes
// from inside configuration mode. The candidate must be committed or
// discarded before leaving: exiting with uncommitted changes triggers an
// interactive confirmation question that would wedge the session. So
// verification runs from config mode via the dialect's run prefix, the save
// decision is taken, and only then is config mode left.
func (r *Runner) commitAndExit(sess Session, d *platform.Dialect, job *inventory.DeviceJob, out *strings.Builder) (bool, error) {
	for _, cmd := range job.VerificationCmds {
		full := d.RunCmdPrefix + cmd
		resp, err := sess.Send(full, session.WaitFor(d.PromptPattern))
		if err != nil {
			return false, fmt.Errorf("verification %q: %w", cmd, err)
		}
		fmt.Fprintf(r.Out, "\n%s\n%s\n", cli.Bold(job.Name+"> "+full), resp)
		out.WriteString(resp)
	}

	save := true
	if r.opts.ConfirmSave {
		ok, err := r.Confirm(job.Name)
		if err != nil {
			return false, fmt.Errorf("save confirmation: %w", err)
		}
		save = ok
	}

	if save {
		resp, err := sess.Send(d.SaveCmd, session.WaitFor(d.PromptPattern))
		out.WriteString(resp)
		if err != nil {
			return false, fmt.Errorf("save: %w", err)
		}
		if d.RejectedCommand(resp) {
			return false, &util.CommandError{Device: job.Name, Command: d.SaveCmd, Output: resp}
		}
	} else {
		util.WithDevice(job.Name).Warnf("Save declined; discarding candidate configuration")
		if _, err := sess.Send(d.DiscardCmd, session.WaitFor(d.PromptPattern)); err != nil {
			return false, fmt.Errorf("discarding candidate: %w", err)
		}
	}

	if _, err := sess.Send(d.ConfigExitCmd, session.ResetPrompt()); err != nil {
		return save, fmt.Errorf("leaving config mode: %w", err)
	}
	return save, nil
}

// escalate enters privileged mode on platforms with an enable concept.
// Skipped when the login prompt already shows privileged mode. The prompt is
// re-captured after sending enable: a device may answer with a password
// challenge or, when no enable password is set, drop straight to the
// privileged prompt.
func (r *Runner) escalate(sess Session, d *platform.Dialect) error {
	if d.EnableCmd == "" {
		return nil
	}
	if privileged(sess.Prompt()) {
		return nil
	}
	if _, err := sess.Send(d.EnableCmd, session.ResetPrompt()); err != nil {
		return fmt.Errorf("enable: %w", err)
	}
	if privileged(sess.Prompt()) {
		return nil
	}
	if _, err := sess.Send(r.creds.EnableSecret, session.ResetPrompt()); err != nil {
		return fmt.Errorf("enable secret: %w", err)
	}
	return nil
}

func privileged(prompt string) bool {
	return strings.HasSuffix(strings.TrimSpace(prompt), "#")
}

func (r *Runner) printPlan(job *inventory.DeviceJob, d *platform.Dialect, cmds []string) {
	fmt.Fprintf(r.Out, "%s (%s via %s)\n", cli.Bold(job.Name), job.OSType, d.Transport)
	fmt.Fprintf(r.Out, "  %s\n", d.ConfigEnterCmd)
	for _, cmd := range cmds {
		fmt.Fprintf(r.Out, "    %s\n", cmd)
	}
	if d.SaveInConfigMode {
		for _, cmd := range job.VerificationCmds {
			fmt.Fprintf(r.Out, "    %s%s\n", d.RunCmdPrefix, cmd)
		}
		fmt.Fprintf(r.Out, "    %s\n", d.SaveCmd)
		fmt.Fprintf(r.Out, "  %s\n", d.ConfigExitCmd)
		return
	}
	fmt.Fprintf(r.Out, "  %s\n", d.ConfigExitCmd)
	for _, cmd := range job.VerificationCmds {
		fmt.Fprintf(r.Out, "  %s\n", cmd)
	}
	fmt.Fprintf(r.Out, "  %s\n", d.SaveCmd)
}
