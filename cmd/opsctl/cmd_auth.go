package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	gsheet "google.golang.org/api/sheets/v4"

	"opsboard/internal/finance/exports"
	"opsboard/internal/log"
)

const authTimeout = 5 * time.Minute

var (
	authPort      string
	authTokenFile string
)

var sheetsAuthCmd = &cobra.Command{
	Use:   "sheets-auth",
	Short: "Authorize Google Sheets access with a user account",
	Long: `Runs the OAuth consent flow for the client in GOOGLE_OAUTH_CLIENT_JSON
or GOOGLE_OAUTH_CLIENT_FILE and saves the resulting token. Point
GOOGLE_OAUTH_TOKEN_FILE at the saved file to read exports without a
service account.

The OAuth client must allow http://localhost:<port>/callback as a
redirect URI.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{skipValidation: "true"},
	RunE:        runSheetsAuth,
}

func init() {
	sheetsAuthCmd.Flags().StringVar(&authPort, "port", "8085", "Local port for the OAuth redirect")
	sheetsAuthCmd.Flags().StringVar(&authTokenFile, "token-file", "", "Where to save the token (default GOOGLE_OAUTH_TOKEN_FILE or token.json)")
	rootCmd.AddCommand(sheetsAuthCmd)
}

func runSheetsAuth(cmd *cobra.Command, args []string) error {
	creds := exports.Credentials{
		OAuthClientJSON: cfg.GoogleOAuthClientJSON,
		OAuthClientFile: cfg.GoogleOAuthClientFile,
	}
	oauthCfg, err := creds.OAuthConfig(gsheet.SpreadsheetsReadonlyScope)
	if err != nil {
		return err
	}
	oauthCfg.RedirectURL = "http://localhost:" + authPort + "/callback"

	outFile := authTokenFile
	if outFile == "" {
		outFile = cfg.GoogleOAuthTokenFile
	}
	if outFile == "" {
		outFile = "token.json"
	}

	state := uuid.NewString()
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	ln, err := net.Listen("tcp", "localhost:"+authPort)
	if err != nil {
		return fmt.Errorf("listen for oauth redirect: %w", err)
	}
	srv := &http.Server{
		Handler:           callbackHandler(state, codeCh, errCh),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("OAuth redirect server failed", log.FieldError, err)
		}
	}()
	defer srv.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "Open this URL to authorize:\n%s\n",
		oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent")))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, authTimeout)
	defer cancel()

	select {
	case code := <-codeCh:
		tok, err := oauthCfg.Exchange(ctx, code)
		if err != nil {
			return fmt.Errorf("token exchange: %w", err)
		}
		if err := exports.SaveToken(outFile, tok); err != nil {
			return err
		}
		logger.Info("OAuth token saved", "file", outFile)
		fmt.Fprintf(cmd.OutOrStdout(), "Saved token to %s\n", outFile)
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return fmt.Errorf("authorization not completed: %w", ctx.Err())
	}
}

// callbackHandler receives the OAuth redirect. Only the first outcome is
// delivered.
func callbackHandler(state string, codeCh chan<- string, errCh chan<- error) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		if denied := q.Get("error"); denied != "" {
			http.Error(w, "OAuth error: "+denied, http.StatusBadRequest)
			select {
			case errCh <- fmt.Errorf("authorization denied: %s", denied):
			default:
			}
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "You may close this window and return to the terminal.")
		select {
		case codeCh <- code:
		default:
		}
	})
	return mux
}
