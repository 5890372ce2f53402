package dispatch

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/weftlabs/weft/internal/ui"
	"github.com/weftlabs/weft/pkg/session"
)

const helpText = `/fork <id>        start a new empty agent
/subfork <id>     start a new agent copying the current history
/switch <id>      switch to an existing agent
/delete <id>      delete an agent (main cannot be deleted)
/list             list known agents
/models           list models of the selected provider
/model <name>     select a model
/provider <name>  select a provider
/status           show provider, model, agent and history size
/quiet            minimal output mode
/normal           verbose output mode
/help             this help
/exit             flush and quit
anything else     chat with the active agent`

// Dispatcher routes one line at a time against a session.
type Dispatcher struct {
	sess   *session.Session
	client session.Completer
	ui     *ui.Printer
}

// New creates a dispatcher.
func New(sess *session.Session, client session.Completer, printer *ui.Printer) *Dispatcher {
	return &Dispatcher{sess: sess, client: client, ui: printer}
}

// Dispatch handles a single input line. It returns true when the
// session should end.
func (d *Dispatcher) Dispatch(ctx context.Context, line string) (exit bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if !strings.HasPrefix(line, "/") {
		d.chat(ctx, line)
		return false
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/fork":
		d.withArg(cmd, arg, d.fork)
	case "/subfork":
		d.withArg(cmd, arg, d.subfork)
	case "/switch":
		d.withArg(cmd, arg, d.switchTo)
	case "/delete":
		d.withArg(cmd, arg, d.delete)
	case "/model":
		d.withArg(cmd, arg, d.selectModel)
	case "/provider":
		d.withArg(cmd, arg, d.selectProvider)
	case "/list":
		d.list()
	case "/models":
		d.models()
	case "/status":
		d.status()
	case "/quiet":
		d.ui.SetQuiet(true)
	case "/normal":
		d.ui.SetQuiet(false)
		d.ui.Notice("normal mode")
	case "/help":
		d.ui.Result("%s", helpText)
	case "/exit":
		return true
	default:
		d.ui.Warn("unknown command %s, try /help", cmd)
	}
	return false
}

// withArg rejects argument-taking commands invoked without one.
func (d *Dispatcher) withArg(cmd, arg string, fn func(string)) {
	if arg == "" {
		d.ui.Warn("usage: %s <name>", cmd)
		return
	}
	fn(arg)
}

func (d *Dispatcher) fork(arg string) {
	if err := d.sess.Fork(arg); err != nil {
		d.ui.Warn("%v", err)
		return
	}
	d.ui.Notice("forked %s (empty history)", d.sess.Active)
}

func (d *Dispatcher) subfork(arg string) {
	if err := d.sess.Subfork(arg); err != nil {
		d.ui.Warn("%v", err)
		return
	}
	d.ui.Notice("subforked %s (%d turns copied)", d.sess.Active, len(d.sess.History))
}

func (d *Dispatcher) switchTo(arg string) {
	if err := d.sess.Switch(arg); err != nil {
		d.ui.Warn("%v", err)
		return
	}
	d.ui.Notice("switched to %s (%d turns)", d.sess.Active, len(d.sess.History))
}

func (d *Dispatcher) delete(arg string) {
	wasActive, err := d.sess.Delete(arg)
	if err != nil {
		d.ui.Warn("%v", err)
		return
	}
	if wasActive {
		d.ui.Notice("deleted active agent, switched back to main")
		return
	}
	d.ui.Notice("deleted agent")
}

func (d *Dispatcher) selectModel(arg string) {
	if err := d.sess.SelectModel(arg); err != nil {
		d.ui.Warn("%v", err)
		return
	}
	d.ui.Notice("model set to %s", arg)
}

func (d *Dispatcher) selectProvider(arg string) {
	if err := d.sess.SelectProvider(arg); err != nil {
		d.ui.Warn("%v", err)
		return
	}
	d.ui.Notice("provider set to %s (model %s)", arg, d.sess.Selection.Model)
}

func (d *Dispatcher) list() {
	for _, id := range d.sess.List() {
		if !d.ui.Quiet() && id == d.sess.Active {
			d.ui.Result("* %s", id)
			continue
		}
		d.ui.Result("%s", id)
	}
}

func (d *Dispatcher) models() {
	for _, key := range d.sess.Models() {
		if d.ui.Quiet() {
			d.ui.Result("%s", key)
			continue
		}
		d.ui.Result("%s -> %s", key, d.sess.RemoteModel(key))
	}
}

func (d *Dispatcher) status() {
	st := d.sess.Status()
	d.ui.Result("provider: %s", st.Provider)
	d.ui.Result("model: %s", st.Model)
	d.ui.Result("agent: %s", st.Agent)
	d.ui.Result("history: %d turns", st.Turns)
}

func (d *Dispatcher) chat(ctx context.Context, line string) {
	content, ok := d.sess.Chat(ctx, d.client, line)
	if !ok {
		d.ui.Warn("no response")
		return
	}
	d.ui.Reply(content)
}

// Shutdown flushes the active agent and says goodbye. Called on /exit
// and on end-of-input.
func (d *Dispatcher) Shutdown() {
	d.sess.Flush()
	d.ui.Notice("bye")
	log.Info().Str("agent", d.sess.Active).Msg("Session ended")
}
