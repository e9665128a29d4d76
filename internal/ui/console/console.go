// Package console implements the line-oriented referee protocol: read a
// Chaos announcement from stdin, reply with the engine's Order move, repeat
// until the board fills or the referee closes the connection.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"regexp"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/ochaos/entropy/internal/agent"
	"github.com/ochaos/entropy/internal/game"
)

var chaosLineRE = regexp.MustCompile(`^([1-7])([A-G])([a-g])$`)

// ErrQuit names a clean close of the input stream by the referee. Run does
// not return it: it returns nil when the input reaches EOF.
var ErrQuit = errors.New("console: referee closed the connection")

// Run reads Chaos announcement lines from in and writes Order replies to
// out, playing agent a until the board fills or in reaches EOF. Malformed input
// is a fatal protocol error: it is logged and the loop stops, mirroring how
// a UCI engine treats a broken command stream as unrecoverable rather than
// silently skipping it.
func Run(ctx context.Context, a agent.Agent, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)
	board := game.NewBoardState() // mirrors the agent's own board, for debug rendering only.
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				klog.V(1).Infof("console: referee closed the connection")
				return nil
			}
			return errors.Wrap(err, "console: reading referee input")
		}
		line = trimTrailingNewline(line)
		if line == "" {
			continue
		}

		move, err := parseChaosLine(line)
		if err != nil {
			klog.Errorf("console: malformed chaos announcement %q: %v", line, err)
			return errors.Wrapf(err, "console: malformed chaos announcement %q", line)
		}

		if err := a.RegisterChaosMove(move); err != nil {
			klog.Errorf("console: illegal chaos move %v from referee: %v", move, err)
			return errors.Wrapf(err, "console: illegal chaos move %v", move)
		}
		if err := board.Place(move); err != nil {
			klog.Errorf("console: mirror board rejected chaos move %v: %v", move, err)
			return errors.Wrapf(err, "console: mirroring chaos move %v", move)
		}

		if board.IsTerminal() {
			if klog.V(1).Enabled() {
				klog.Infof("console: board filled\n%s\n%s", RenderBoard(&board), ResultBanner(&board))
			}
			return nil
		}

		reply, err := a.SuggestOrderMove(ctx)
		if err != nil {
			return errors.Wrap(err, "console: suggesting order move")
		}
		if err := a.RegisterOrderMove(reply); err != nil {
			return errors.Wrapf(err, "console: registering our own order move %v", reply)
		}
		if err := board.Move(reply); err != nil {
			klog.Errorf("console: mirror board rejected order move %v: %v", reply, err)
			return errors.Wrapf(err, "console: mirroring order move %v", reply)
		}

		if klog.V(2).Enabled() {
			klog.Infof("console: board after move %v\n%s", reply, RenderBoard(&board))
		}

		if _, err := fmt.Fprintf(out, "%s\n", formatOrderReply(reply, move.Pos)); err != nil {
			return errors.Wrap(err, "console: writing order reply")
		}
	}
}

func trimTrailingNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

// parseChaosLine decodes a "<digit><pos>" announcement, e.g. "3Dd", into a
// ChaosMove.
func parseChaosLine(line string) (game.ChaosMove, error) {
	m := chaosLineRE.FindStringSubmatch(line)
	if m == nil {
		return game.ChaosMove{}, errors.Errorf("expected <colour digit><row><col>, got %q", line)
	}
	colour := game.Colour(m[1][0] - '0')
	pos, err := game.ParsePos(m[2] + m[3])
	if err != nil {
		return game.ChaosMove{}, err
	}
	return game.ChaosMove{Pos: pos, Colour: colour}, nil
}

// formatOrderReply renders an Order move as "<from><to>". A pass is echoed
// as lastChaosPos duplicated -- the position of the chip Chaos just placed
// -- per the referee protocol; there is no "--" placeholder on the wire.
func formatOrderReply(move game.OrderMove, lastChaosPos game.Pos) string {
	if move.IsPass() {
		return lastChaosPos.String() + lastChaosPos.String()
	}
	return move.From.String() + move.To.String()
}
