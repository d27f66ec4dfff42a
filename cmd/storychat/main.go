package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"storypals/internal/chatclient"
	"storypals/internal/config"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

// app concentra las dependencias compartidas por los subcomandos.
type app struct {
	cfg     *config.ClientConfig
	logger  *zap.Logger
	session *chatclient.FileSession
	client  *chatclient.APIClient
	in      *bufio.Reader
	out     io.Writer

	apiURL      string
	sessionFile string
	debug       bool
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	a := &app{in: bufio.NewReader(in), out: out}

	root := &cobra.Command{
		Use:           "storychat",
		Short:         "Chat with the StoryPals characters from your terminal",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.SetIn(in)
	root.SetOut(out)

	root.PersistentFlags().StringVar(&a.apiURL, "api-url", "", "backend base URL (default $STORYPALS_API_URL)")
	root.PersistentFlags().StringVar(&a.sessionFile, "session-file", "", "session file (default $STORYPALS_SESSION_FILE or the user config dir)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "write a development log to $STORYPALS_DEBUG_LOG")

	root.AddCommand(
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newCharactersCmd(a),
		newProfileCmd(a),
		newChildrenCmd(a),
		newReviewCmd(a),
		newStatsCmd(a),
		newChatCmd(a),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.LoadClientConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.apiURL != "" {
		cfg.APIURL = a.apiURL
	}
	if a.sessionFile != "" {
		cfg.SessionFile = a.sessionFile
	}
	if cfg.SessionFile == "" {
		path, err := chatclient.DefaultSessionPath()
		if err != nil {
			return fmt.Errorf("resolve session file: %w", err)
		}
		cfg.SessionFile = path
	}
	a.cfg = cfg

	a.logger = zap.NewNop()
	if a.debug {
		// La TUI ocupa la terminal: el log va a un archivo.
		zcfg := zap.NewDevelopmentConfig()
		zcfg.OutputPaths = []string{cfg.DebugLogFile}
		zcfg.ErrorOutputPaths = []string{cfg.DebugLogFile}
		logger, err := zcfg.Build()
		if err != nil {
			return fmt.Errorf("debug logger: %w", err)
		}
		a.logger = logger
	}

	session, err := chatclient.NewFileSession(cfg.SessionFile)
	if err != nil {
		return err
	}
	a.session = session
	a.client = chatclient.NewAPIClient(cfg.APIURL, session,
		chatclient.WithLogger(a.logger),
		chatclient.WithTimeout(cfg.RequestTimeout),
	)
	return nil
}

// prompt lee una linea de la entrada; si value ya tiene contenido lo devuelve tal cual.
func (a *app) prompt(label, value string) (string, error) {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value), nil
	}
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.TrimSpace(label), ":"), err)
	}
	return strings.TrimSpace(line), nil
}

// describe convierte errores del cliente en un texto para la terminal.
func describe(err error) error {
	switch chatclient.KindOf(err) {
	case chatclient.KindAuth:
		return fmt.Errorf("not logged in or session expired; run `storychat login` (%v)", err)
	case chatclient.KindNetwork:
		return fmt.Errorf("cannot reach the StoryPals server: %v", err)
	default:
		return err
	}
}
