package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"expertcof/internal/analyses"
	"expertcof/internal/analysis"
	"expertcof/internal/analyzer"
	"expertcof/internal/compare"
	"expertcof/internal/exports"
	"expertcof/internal/history"
	"expertcof/internal/usage"
)

func newUploadCommand(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <arquivo.pdf>",
		Short: "Enviar uma COF em PDF para análise",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, userID, tok, err := rt.authed(cmd.Context())
			if err != nil {
				return err
			}
			body, err := readUpload(args[0])
			if err != nil {
				return err
			}

			var res analysis.Result
			err = rt.busy("Analisando documento...", func() error {
				res, err = rt.App.Dashboard.Upload(ctx, userID, tok, filepath.Base(args[0]), body)
				return err
			})
			if err != nil {
				return errors.New(analyzer.UserMessage(err))
			}
			if res.ID != "" {
				if err := rt.Session.SetLastAnalysisID(res.ID); err != nil {
					return fmt.Errorf("save session: %w", err)
				}
			}
			rt.palette().result(rt.Out, res)
			return nil
		},
	}
}

// readUpload reads at most one byte past the size limit so Validate can
// reject oversized files without loading them whole.
func readUpload(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	body, err := io.ReadAll(io.LimitReader(f, analyzer.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return body, nil
}

func newStatsCommand(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Mostrar plano e estatísticas de uso",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, userID, _, err := rt.authed(cmd.Context())
			if err != nil {
				return err
			}
			var s usage.Summary
			err = rt.busy("Carregando...", func() error {
				s, err = rt.App.Usage.Get(ctx, userID)
				return err
			})
			if err != nil {
				return errors.New("Erro ao carregar estatísticas.")
			}
			rt.palette().summary(rt.Out, s)
			return nil
		},
	}
}

func newHistoryCommand(rt *Runtime) *cobra.Command {
	var search, selected string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Listar análises realizadas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, userID, _, err := rt.authed(cmd.Context())
			if err != nil {
				return err
			}
			var l history.Listing
			err = rt.busy("Carregando histórico...", func() error {
				l, err = rt.App.History.List(ctx, userID, search, compare.ParseSelection(selected))
				return err
			})
			if err != nil {
				return errors.New("Erro ao carregar histórico.")
			}
			p := rt.palette()
			if !l.Empty && len(l.Items) == 0 {
				p.muted.Fprintln(rt.Out, l.Message)
				return nil
			}
			p.listing(rt.Out, l)
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "filtrar por nome da franquia ou CNPJ")
	cmd.Flags().StringVar(&selected, "select", "", "ids separados por vírgula para comparar (até 3)")
	return cmd
}

func newRecentCommand(rt *Runtime) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Listar as análises mais recentes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, userID, _, err := rt.authed(cmd.Context())
			if err != nil {
				return err
			}
			var l history.Listing
			err = rt.busy("Carregando...", func() error {
				l, err = rt.App.History.Recent(ctx, userID, limit)
				return err
			})
			if err != nil {
				return errors.New("Erro ao carregar análises recentes.")
			}
			rt.palette().listing(rt.Out, l)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", history.RecentLimit, "quantidade máxima")
	return cmd
}

func newShowCommand(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Exibir uma análise (a última aberta quando o id é omitido)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, userID, _, err := rt.authed(cmd.Context())
			if err != nil {
				return err
			}
			id, err := rt.analysisID(args)
			if err != nil {
				return err
			}
			res, err := rt.loadResult(ctx, userID, id)
			if err != nil {
				return err
			}
			if err := rt.Session.SetLastAnalysisID(id); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			rt.palette().result(rt.Out, res)
			return nil
		},
	}
}

func newCompareCommand(rt *Runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <id> <id> [id]",
		Short: "Comparar até três análises lado a lado",
		Args:  cobra.RangeArgs(compare.MinComparison, compare.MaxSelection),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, userID, _, err := rt.authed(cmd.Context())
			if err != nil {
				return err
			}
			var cmp compare.Comparison
			err = rt.busy("Carregando comparação...", func() error {
				cmp, err = rt.App.Compare.AssembleFor(ctx, userID, args)
				return err
			})
			if err != nil {
				return errors.New("Erro ao carregar comparação.")
			}
			rt.palette().comparison(rt.Out, cmp)
			return nil
		},
	}
}

func newExportCommand(rt *Runtime) *cobra.Command {
	var format, out string
	var archive bool
	cmd := &cobra.Command{
		Use:   "export [id]",
		Short: "Exportar uma análise em xlsx ou pdf",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := exports.ParseFormat(format)
			if err != nil {
				return errors.New("Formato deve ser xlsx ou pdf.")
			}
			ctx, userID, _, err := rt.authed(cmd.Context())
			if err != nil {
				return err
			}
			id, err := rt.analysisID(args)
			if err != nil {
				return err
			}
			res, err := rt.loadResult(ctx, userID, id)
			if err != nil {
				return err
			}

			if archive {
				archived, err := rt.App.Exports.Archive(ctx, userID, res, f)
				if err != nil {
					return fmt.Errorf("Erro ao arquivar exportação: %w", err)
				}
				fmt.Fprintf(rt.Out, "Arquivado: %s (%d bytes)\n", archived.Key, archived.Size)
				return nil
			}

			art, err := rt.App.Exports.Render(res, f)
			if err != nil {
				return errors.New("Erro ao gerar o arquivo.")
			}
			path := out
			if path == "" {
				path = art.FileName
			} else if st, err := os.Stat(path); err == nil && st.IsDir() {
				path = filepath.Join(path, art.FileName)
			}
			if err := os.WriteFile(path, art.Body, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			rt.palette().good.Fprintf(rt.Out, "Exportado: %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(exports.FormatDocument), "xlsx ou pdf")
	cmd.Flags().StringVarP(&out, "out", "o", "", "arquivo ou diretório de destino")
	cmd.Flags().BoolVar(&archive, "archive", false, "guardar no armazenamento de exportações em vez de gravar localmente")
	return cmd
}

func (rt *Runtime) analysisID(args []string) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0]), nil
	}
	if id := rt.Session.LastAnalysisID(); id != "" {
		return id, nil
	}
	return "", errors.New("Informe o id da análise.")
}

func (rt *Runtime) loadResult(ctx context.Context, userID, id string) (analysis.Result, error) {
	var res analysis.Result
	err := rt.busy("Carregando análise...", func() error {
		var err error
		res, err = rt.App.History.Detail(ctx, userID, id)
		return err
	})
	if err != nil {
		if errors.Is(err, analyses.ErrNotFound) {
			return analysis.Result{}, errors.New("Análise não encontrada.")
		}
		return analysis.Result{}, errors.New("Erro ao carregar análise.")
	}
	return res, nil
}
