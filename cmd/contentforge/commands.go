package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lamim/contentforge/internal/config"
	"github.com/lamim/contentforge/internal/writer"
	"github.com/lamim/contentforge/pkg/models"
)

func runGenerate(cmd *cobra.Command, args []string) error {
	a, req, err := startSession()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	a.serveMetrics(ctx)

	draft, err := generateDraft(ctx, a, req)
	if err != nil {
		return err
	}

	fmt.Println(renderDraftSummary(draft))
	fmt.Printf("Draft written to %s\n", a.session.GetDraftPath())
	if !draft.Persistable() {
		return fmt.Errorf("draft is %s; see %s", draft.Status, a.session.GetRawOutputPath())
	}
	return nil
}

func runPersist(cmd *cobra.Command, args []string) error {
	cfg, secrets, err := loadConfig()
	if err != nil {
		return err
	}

	session, draftPath, err := resolveDraft(cfg.Output.Dir, args)
	if err != nil {
		return err
	}
	draft, err := writer.LoadDraft(draftPath)
	if err != nil {
		return err
	}

	a, err := newApp(cfg, secrets, session)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	a.serveMetrics(ctx)

	report, err := persistDraft(ctx, a, draft, persistTarget(draft))
	return finishPersist(a, report, err)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	a, req, err := startSession()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	a.serveMetrics(ctx)

	draft, err := generateDraft(ctx, a, req)
	if err != nil {
		return err
	}

	fmt.Println(renderDraftSummary(draft))
	fmt.Println(renderContent(draft))

	if !assumeYes {
		ok, err := confirm(os.Stdin, "Persist this content?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Printf("Not persisted. Draft kept at %s\n", a.session.GetDraftPath())
			return nil
		}
	}

	report, err := persistDraft(ctx, a, draft, persistTarget(draft))
	return finishPersist(a, report, err)
}

func runPreview(cmd *cobra.Command, args []string) error {
	outputDir := config.Default().Output.Dir
	if sessionName != "" {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		outputDir = cfg.Output.Dir
	}

	_, draftPath, err := resolveDraft(outputDir, args)
	if err != nil {
		return err
	}
	draft, err := writer.LoadDraft(draftPath)
	if err != nil {
		return err
	}

	fmt.Println(renderDraftSummary(draft))
	fmt.Println(renderContent(draft))
	return nil
}

// startSession loads config and request, creates a new session and backs both files up
func startSession() (*app, models.GenerationRequest, error) {
	cfg, secrets, err := loadConfig()
	if err != nil {
		return nil, models.GenerationRequest{}, err
	}

	req, err := config.LoadRequest(requestPath)
	if err != nil {
		return nil, models.GenerationRequest{}, fmt.Errorf("failed to load request: %w", err)
	}

	session, err := writer.NewSessionManager(cfg.Output.Dir, slog.Default())
	if err != nil {
		return nil, models.GenerationRequest{}, fmt.Errorf("failed to create session: %w", err)
	}

	a, err := newApp(cfg, secrets, session)
	if err != nil {
		return nil, models.GenerationRequest{}, err
	}

	if err := session.BackupConfig(configPath); err != nil {
		a.Close()
		return nil, models.GenerationRequest{}, fmt.Errorf("failed to backup config: %w", err)
	}
	if err := session.BackupRequest(requestPath); err != nil {
		a.Close()
		return nil, models.GenerationRequest{}, fmt.Errorf("failed to backup request: %w", err)
	}

	return a, req, nil
}

// resolveDraft finds the draft from either --session or a path argument
func resolveDraft(outputDir string, args []string) (*writer.SessionManager, string, error) {
	switch {
	case sessionName != "" && len(args) > 0:
		return nil, "", fmt.Errorf("pass either a draft path or --session, not both")
	case sessionName != "":
		session, err := writer.OpenSession(outputDir, sessionName, slog.Default())
		if err != nil {
			return nil, "", fmt.Errorf("invalid session: %w", err)
		}
		return session, session.GetDraftPath(), nil
	case len(args) == 1:
		session, err := writer.SessionForDraft(args[0], slog.Default())
		if err != nil {
			return nil, "", err
		}
		return session, args[0], nil
	default:
		return nil, "", fmt.Errorf("a draft path or --session is required")
	}
}

// confirm asks a yes/no question on an interactive terminal
func confirm(in *os.File, question string) (bool, error) {
	if !isTerminal(in) {
		return false, fmt.Errorf("stdin is not a terminal; pass --yes to persist without review")
	}
	return readConfirmation(in, os.Stdout, question)
}

func readConfirmation(in io.Reader, out io.Writer, question string) (bool, error) {
	_, _ = fmt.Fprintf(out, "%s [y/N]: ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
