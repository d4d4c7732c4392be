package main

import (
    "context"
    "errors"
    "fmt"
    "io"
    "log"
    "os/signal"
    "strings"
    "sync"
    "syscall"

    "github.com/chzyer/readline"
    "github.com/joho/godotenv"
    "github.com/park285/Cheese-bot-client/internal/adapter/consolepresenter"
    "github.com/park285/Cheese-bot-client/internal/chessbuilder"
    appcfg "github.com/park285/Cheese-bot-client/internal/config"
    "github.com/park285/Cheese-bot-client/internal/coordinator"
    "github.com/park285/Cheese-bot-client/internal/obslog"
    "github.com/park285/Cheese-bot-client/internal/roster"
    "github.com/park285/Cheese-bot-client/internal/rules"
    "go.uber.org/zap"
)

func main() {
    // .env is optional
    _ = godotenv.Load()

    cfg, err := appcfg.Load()
    if err != nil {
        log.Fatalf("config error: %v", err)
    }
    if err := obslog.InitFromEnv(); err != nil {
        log.Fatalf("logger init error: %v", err)
    }
    logger := obslog.L()
    defer func() { _ = logger.Sync() }()

    rl, err := readline.NewEx(&readline.Config{
        Prompt:          "cheese> ",
        HistoryFile:     ".cheese_history",
        InterruptPrompt: "^C",
        EOFPrompt:       "quit",
    })
    if err != nil {
        log.Fatalf("readline init error: %v", err)
    }
    defer rl.Close()

    deps, err := chessbuilder.New(cfg, rl.Stdout(), logger)
    if err != nil {
        log.Fatalf("client init error: %v", err)
    }
    defer func() { _ = deps.Close() }()

    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()
    go func() {
        <-ctx.Done()
        _ = rl.Close()
    }()

    app := &client{
        cfg:       cfg,
        deps:      deps,
        coord:     deps.Coordinator,
        presenter: consolepresenter.NewPresenter(rl.Stdout()),
        logger:    logger,
    }
    app.banner()
    app.loop(ctx, rl)
    app.wait()
    logger.Info("client_exit")
}

type client struct {
    cfg       *appcfg.AppConfig
    deps      *chessbuilder.Deps
    coord     *coordinator.Coordinator
    presenter *consolepresenter.Presenter
    logger    *zap.Logger
    inflight  sync.WaitGroup
}

func (c *client) banner() {
    f := c.presenter.Format
    _ = c.presenter.Print("♞ Cheese chess client")
    _ = c.presenter.Print(c.deps.Catalog.Text("notice.server", map[string]any{"ServerURL": c.serverURL()}, "Server: "+c.serverURL()))
    _ = c.presenter.Print(f.Status(c.coord.Snapshot()))
    _ = c.presenter.Print("Type 'help' for commands.")
}

func (c *client) loop(ctx context.Context, rl *readline.Instance) {
    for {
        rl.SetPrompt(c.prompt())
        line, err := rl.Readline()
        if errors.Is(err, readline.ErrInterrupt) {
            if strings.TrimSpace(line) == "" {
                return
            }
            continue
        }
        if err == io.EOF || ctx.Err() != nil {
            return
        }
        if err != nil {
            continue
        }

        line = strings.TrimSpace(line)
        if line == "" {
            continue
        }
        if !c.execute(ctx, line) {
            return
        }
    }
}

// execute runs one command line and reports whether the loop should continue.
func (c *client) execute(ctx context.Context, line string) bool {
    parts := strings.Fields(line)
    cmd := strings.ToLower(parts[0])
    args := parts[1:]
    f := c.presenter.Format

    switch cmd {
    case "quit", "exit", "q":
        return false
    case "help", "?":
        _ = c.presenter.Print(f.Help())
    case "new", "start":
        c.startGame(ctx, args)
    case "move", "m":
        c.move(ctx, args)
    case "reset":
        c.coord.ResetSession()
        _ = c.presenter.Print(f.Status(c.coord.Snapshot()))
    case "status":
        c.coord.OnSnapEnd()
        _ = c.presenter.Print(f.Status(c.coord.Snapshot()))
    case "levels":
        current := c.deps.DefaultBot
        if snap := c.coord.Snapshot(); snap.HasSession() {
            current = snap.Bot
        }
        _ = c.presenter.Print(f.Levels(roster.All(), current))
    case "debug":
        if ring := obslog.DebugRing(); ring != nil {
            _ = c.presenter.Lines(ring.Lines())
        } else {
            _ = c.presenter.Print("debug log is disabled (LOG_RING_SIZE=0)")
        }
    default:
        // bare moves: "e2e4" or "e2 e4"
        if _, _, ok := parseMove(parts); ok {
            c.move(ctx, parts)
            return true
        }
        _ = c.presenter.Print("Unknown command. Try 'help'.")
    }
    return true
}

func (c *client) startGame(ctx context.Context, args []string) {
    player := c.cfg.PlayerID
    level := ""
    if len(args) >= 1 {
        player = args[0]
    }
    if len(args) >= 2 {
        level = args[1]
    }
    if strings.TrimSpace(player) == "" {
        _ = c.presenter.Print("Usage: new <player> [level]")
        return
    }

    bot := c.deps.DefaultBot
    if level != "" {
        b, err := roster.Lookup(level)
        if err != nil {
            _ = c.presenter.Print(err.Error())
            return
        }
        bot = b
    }

    f := c.presenter.Format
    if _, err := c.coord.StartSession(ctx, player, bot); err != nil {
        _ = c.presenter.Print(f.Error(err))
        _ = c.presenter.Print(c.coord.Snapshot().Notice)
        return
    }
    _ = c.presenter.Print(f.Started(c.coord.Snapshot(), c.serverURL()))
    _ = c.presenter.Print(f.Status(c.coord.Snapshot()))
}

// move sends the move in the background so the prompt stays usable;
// a second move while one is in flight is refused by the coordinator.
func (c *client) move(ctx context.Context, args []string) {
    from, to, ok := parseMove(args)
    f := c.presenter.Format
    if !ok {
        _ = c.presenter.Print("Usage: move e2e4 | move e2 e4")
        return
    }
    if !c.coord.OnDragStart(from, "") {
        _, err := c.coord.AttemptLocalMove(from, to)
        if err == nil {
            err = coordinator.ErrLocalIllegalMove
        }
        _ = c.presenter.Print(f.Error(err))
        return
    }

    c.inflight.Add(1)
    go func() {
        defer c.inflight.Done()
        result, out, err := c.coord.OnDrop(ctx, from, to)
        c.logger.Debug("drop_result", zap.String("from", from), zap.String("to", to), zap.String("result", result.String()))
        if err != nil {
            _ = c.presenter.Print(f.Error(err))
            _ = c.presenter.Print(f.Status(c.coord.Snapshot()))
            return
        }
        c.coord.OnMoveEnd()
        snap := c.coord.Snapshot()
        _ = c.presenter.Print(f.Move(out, snap))
        _ = c.presenter.Print(f.Status(snap))
    }()
}

func (c *client) wait() {
    c.inflight.Wait()
}

func (c *client) prompt() string {
    snap := c.coord.Snapshot()
    if !snap.HasSession() {
        return "cheese> "
    }
    suffix := ""
    if snap.Busy {
        suffix = " …"
    }
    return fmt.Sprintf("cheese [%s %s%s]> ", snap.PlayerID, shortID(snap.SessionID), suffix)
}

func (c *client) serverURL() string {
    if c.cfg.Transport == appcfg.TransportWS {
        return c.cfg.GameServerWSURL
    }
    return c.cfg.GameServerURL
}

func parseMove(args []string) (string, string, bool) {
    switch len(args) {
    case 1:
        return rules.SplitUCI(args[0])
    case 2:
        if _, err := rules.ParseSquare(args[0]); err != nil {
            return "", "", false
        }
        if _, err := rules.ParseSquare(args[1]); err != nil {
            return "", "", false
        }
        return strings.ToLower(args[0]), strings.ToLower(args[1]), true
    }
    return "", "", false
}

func shortID(s string) string {
    s = strings.TrimSpace(s)
    if len(s) <= 8 {
        return s
    }
    return s[:8]
}
