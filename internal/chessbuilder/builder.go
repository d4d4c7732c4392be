package chessbuilder

import (
    "fmt"
    "io"
    "strings"

    "github.com/park285/Cheese-bot-client/internal/boardview"
    "github.com/park285/Cheese-bot-client/internal/config"
    "github.com/park285/Cheese-bot-client/internal/coordinator"
    "github.com/park285/Cheese-bot-client/internal/events"
    "github.com/park285/Cheese-bot-client/internal/gameapi"
    "github.com/park285/Cheese-bot-client/internal/msgcat"
    "github.com/park285/Cheese-bot-client/internal/roster"
    "github.com/park285/Cheese-bot-client/internal/rules"
    "go.uber.org/zap"
)

// Deps is everything the interactive client needs, wired from config.
type Deps struct {
    Coordinator *coordinator.Coordinator
    Transport   gameapi.Transport
    Renderer    boardview.Renderer
    Publisher   *events.Publisher
    Sink        *events.RedisSink
    Catalog     *msgcat.Catalog
    DefaultBot  roster.Bot
}

// New builds the client. out receives the text board; it is ignored for BOARD_RENDERER=png.
func New(cfg *config.AppConfig, out io.Writer, logger *zap.Logger) (*Deps, error) {
    if cfg == nil {
        return nil, fmt.Errorf("nil config")
    }
    if logger == nil {
        logger = zap.NewNop()
    }

    bot := roster.Default()
    if strings.TrimSpace(cfg.BotLevel) != "" {
        b, err := roster.Lookup(cfg.BotLevel)
        if err != nil {
            return nil, fmt.Errorf("BOT_LEVEL: %w", err)
        }
        bot = b
    }

    catalog, err := msgcat.New(cfg.MessagesDir)
    if err != nil {
        return nil, fmt.Errorf("load messages: %w", err)
    }

    renderer := buildRenderer(cfg, out)

    // Events: in-process always, Redis optional
    publisher := events.NewPublisher()
    var sink *events.RedisSink
    if strings.TrimSpace(cfg.EventsRedisURL) != "" {
        sink, err = events.NewRedisSink(cfg.EventsRedisURL, cfg.EventsChannelPrefix, logger)
        if err != nil {
            return nil, fmt.Errorf("init event sink: %w", err)
        }
        publisher.SubscribeAll(sink.Handle)
    }

    transport, err := gameapi.NewTransport(cfg, logger)
    if err != nil {
        if sink != nil {
            _ = sink.Close()
        }
        return nil, fmt.Errorf("init transport: %w", err)
    }

    coord := coordinator.New(transport, rules.NewChecker(), renderer,
        coordinator.WithLogger(logger),
        coordinator.WithPublisher(publisher),
        coordinator.WithCatalog(catalog),
        coordinator.WithRequestTimeout(cfg.RequestTimeout),
        coordinator.WithServerURL(serverURL(cfg)),
    )

    return &Deps{
        Coordinator: coord,
        Transport:   transport,
        Renderer:    renderer,
        Publisher:   publisher,
        Sink:        sink,
        Catalog:     catalog,
        DefaultBot:  bot,
    }, nil
}

// Close releases the transport connection and flushes pending events.
func (d *Deps) Close() error {
    if d == nil {
        return nil
    }
    var firstErr error
    if d.Transport != nil {
        if err := d.Transport.Close(); err != nil {
            firstErr = err
        }
    }
    if d.Sink != nil {
        if err := d.Sink.Close(); err != nil && firstErr == nil {
            firstErr = err
        }
    }
    return firstErr
}

func buildRenderer(cfg *config.AppConfig, out io.Writer) boardview.Renderer {
    switch cfg.BoardRenderer {
    case config.RendererPNG:
        return boardview.NewPNGRenderer(cfg.BoardPNGPath, 0)
    case config.RendererBoth:
        return boardview.Multi(boardview.NewTextRenderer(out), boardview.NewPNGRenderer(cfg.BoardPNGPath, 0))
    default:
        return boardview.NewTextRenderer(out)
    }
}

// serverURL is the address shown to the user for the selected transport.
func serverURL(cfg *config.AppConfig) string {
    if cfg.Transport == config.TransportWS {
        return cfg.GameServerWSURL
    }
    return cfg.GameServerURL
}
