package runner

import (
	"context"
	"net"
	"strconv"

	"github.com/confpush/confpush/pkg/inventory"
	"github.com/confpush/confpush/pkg/platform"
	"github.com/confpush/confpush/pkg/session"
	"github.com/confpush/confpush/pkg/transport"
	"github.com/confpush/confpush/pkg/util"
)

// dialDevice is the default Dialer: opens the dialect's transport and wraps
// it in a prompt-tracking session.
func (r *Runner) dialDevice(_ context.Context, job *inventory.DeviceJob, d *platform.Dialect) (Session, error) {
	addr := net.JoinHostPort(job.Host(), strconv.Itoa(r.cfg.PortFor(d)))

	var (
		tport transport.Transport
		err   error
	)
	switch d.Transport {
	case platform.TransportTelnet:
		tport, err = transport.NewTelnet(addr, r.creds.Username, r.creds.Password, r.cfg.ConnectTimeout.Std())
	default:
		tport, err = transport.NewSSH(addr, transport.SSHClientConfig(r.creds.Username, r.creds.Password, r.cfg.ConnectTimeout.Std()))
	}
	if err != nil {
		return nil, &util.ConnectError{Device: job.Name, Addr: addr, Err: err}
	}

	sess, err := session.New(tport, &session.Config{
		PromptTimeout:  r.cfg.PromptTimeout.Std(),
		CommandTimeout: r.cfg.CommandTimeout.Std(),
	})
	if err != nil {
		tport.Close()
		return nil, &util.ConnectError{Device: job.Name, Addr: addr, Err: err}
	}
	return sess, nil
}
