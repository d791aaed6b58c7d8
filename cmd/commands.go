package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gomcpgo/replicate/pkg/catalog"
	"github.com/gomcpgo/replicate/pkg/client"
	"github.com/gomcpgo/replicate/pkg/fakeapi"
	"github.com/gomcpgo/replicate/pkg/prediction"
	"github.com/gomcpgo/replicate/pkg/responses"
	"github.com/gomcpgo/replicate/pkg/storage"
	"github.com/gomcpgo/replicate/pkg/types"
	"github.com/spf13/cobra"
)

func versionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "versions <owner/model|alias>",
		Short: "List the versions of a model, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.newClient()
			if err != nil {
				return err
			}
			path, _ := catalog.Resolve(args[0])
			versions, err := c.ListVersions(cmd.Context(), path)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), responses.BuildVersionsResponse(path, versions))
			return nil
		},
	}
}

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the model aliases accepted by predict and versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), responses.BuildCatalogResponse(catalog.List()))
			return nil
		},
	}
}

func predictCmd(a *app) *cobra.Command {
	var (
		version   string
		pairs     []string
		inputFile string
		stream    bool
		recordDir string
	)

	cmd := &cobra.Command{
		Use:   "predict <owner/model[:version]|alias>",
		Short: "Run a prediction and wait for its result",
		Example: "  replicate predict stability-ai/sdxl -i prompt='a cat' -i num_outputs=2\n" +
			"  replicate predict owner/model --version 5c7d... --input-file input.yaml --stream",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := buildInput(inputFile, pairs)
			if err != nil {
				return err
			}
			c, err := a.newClient()
			if err != nil {
				return err
			}
			path, pinned := catalog.Resolve(args[0])
			if version == "" {
				version = pinned
			}
			ctx := cmd.Context()
			model, err := c.GetModel(ctx, path, version)
			if err != nil {
				return err
			}

			started := time.Now()
			var final prediction.Snapshot
			if stream {
				final, err = streamPrediction(ctx, cmd.OutOrStdout(), model, input)
			} else {
				final, err = model.Run(ctx, input)
			}

			if recordDir != "" && final.Prediction != nil {
				if saveErr := saveRecord(storage.NewStorage(recordDir), model.Resolved(), input, final, started); saveErr != nil {
					a.logger.Warn().Err(saveErr).Str("prediction_id", final.Prediction.ID).Msg("failed to save prediction record")
				}
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), responses.BuildPredictionResponse("predict", model.Resolved(), final))
			return nil
		},
	}

	cmd.Flags().StringVar(&version, "version", "", "Model version id (defaults to the most recent)")
	cmd.Flags().StringArrayVarP(&pairs, "input", "i", nil, "Input as key=value; JSON values are decoded (repeatable)")
	cmd.Flags().StringVar(&inputFile, "input-file", "", "JSON or YAML file holding the input object")
	cmd.Flags().BoolVar(&stream, "stream", false, "Print every status snapshot as a JSON line")
	cmd.Flags().StringVar(&recordDir, "record-dir", "", "Directory to save a record of the finished prediction")
	return cmd
}

// streamPrediction prints each snapshot and returns the last one. Failed and
// canceled predictions are reported the same way Run reports them.
func streamPrediction(ctx context.Context, w io.Writer, model *client.Model, input map[string]interface{}) (prediction.Snapshot, error) {
	s := model.Stream(input)
	var last prediction.Snapshot
	for {
		snap, err := s.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return last, err
		}
		last = snap
		fmt.Fprintln(w, responses.BuildSnapshotLine(snap))
	}
	return last, prediction.Outcome(last)
}

func saveRecord(store *storage.Storage, model types.ResolvedModel, input map[string]interface{}, snap prediction.Snapshot, started time.Time) error {
	rec := &types.PredictionRecord{
		PredictionID: snap.Prediction.ID,
		Model:        model.Path,
		ModelVersion: model.VersionID(),
		Status:       snap.Status,
		Input:        input,
		Output:       snap.Output,
		Polls:        snap.Poll,
		StartedAt:    started,
		FinishedAt:   snap.At,
	}
	if snap.Prediction.Error != nil {
		msg := fmt.Sprintf("%v", snap.Prediction.Error)
		rec.Error = &msg
	}
	return store.SaveRecord(rec)
}

func getCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <prediction-id>",
		Short: "Show the current state of a prediction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.newClient()
			if err != nil {
				return err
			}
			p, err := c.GetPrediction(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), responses.BuildPredictionStatusResponse("get", p))
			return nil
		},
	}
}

func cancelCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <prediction-id>",
		Short: "Cancel a running prediction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.newClient()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := c.CancelPrediction(ctx, args[0]); err != nil {
				return err
			}
			p, err := c.GetPrediction(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), responses.BuildPredictionStatusResponse("cancel", p))
			return nil
		},
	}
}

func historyCmd(a *app) *cobra.Command {
	var recordDir string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved prediction records, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := storage.NewStorage(recordDir).ListRecords()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), responses.BuildRecordsResponse(records))
			return nil
		},
	}
	cmd.Flags().StringVar(&recordDir, "record-dir", "", "Directory holding saved prediction records")
	_ = cmd.MarkFlagRequired("record-dir")
	return cmd
}

func fakeServerCmd(a *app) *cobra.Command {
	var (
		addr   string
		token  string
		models []string
	)
	cmd := &cobra.Command{
		Use:   "fake-server",
		Short: "Serve an in-memory imitation of the Replicate API",
		Example: "  replicate fake-server --addr :8089 --model owner/model=v2,v1\n" +
			"  replicate predict owner/model --base-url http://localhost:8089/v1 --token x",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []fakeapi.Option{fakeapi.WithToken(token)}
			for _, m := range models {
				path, ids, ok := strings.Cut(m, "=")
				if !ok || path == "" || ids == "" {
					return fmt.Errorf("expected owner/model=version[,version...], got %q", m)
				}
				opts = append(opts, fakeapi.WithModel(path, strings.Split(ids, ",")...))
			}

			srv := &http.Server{Addr: addr, Handler: fakeapi.New(opts...).Handler()}
			errCh := make(chan error, 1)
			go func() {
				a.logger.Info().Str("addr", addr).Msg("fake API listening")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("graceful shutdown error: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8089", "HTTP listen address")
	cmd.Flags().StringVar(&token, "require-token", "", "Reject requests without this token")
	cmd.Flags().StringArrayVar(&models, "model", []string{"owner/model=v1"}, "Published model as owner/model=version[,version...] (repeatable)")
	return cmd
}
