package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"estatepro/config"
	"estatepro/models"
	"estatepro/services"
	"estatepro/services/negotiation"
	"estatepro/utils"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var userID string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "estatectl: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "estatectl",
		Short: "Operator CLI for the service-request negotiation engine",
		Long: `estatectl inspects slot subdivision and status classification locally and
drives the scheduling gateway on behalf of a user for support work.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&userID, "user", "u", "", "User id to act as")
	cmd.PersistentFlags().String("gateway", "", "Scheduling gateway base URL (overrides GATEWAY_BASE_URL)")
	_ = viper.BindPFlag("GATEWAY_BASE_URL", cmd.PersistentFlags().Lookup("gateway"))

	cmd.AddCommand(
		newSlotsCmd(),
		newWindowsCmd(),
		newClassifyCmd(),
		newMeetingsCmd(),
		newDecideCmd(),
		newInboxCmd(),
		newTokenCmd(),
	)
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// withStack loads configuration and builds the negotiation stack for
// commands that talk to the gateway.
func withStack(fn func(*services.Stack) error) error {
	if userID == "" {
		return fmt.Errorf("--user is required")
	}
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	config.AppConfig = cfg
	stack, err := services.NewStack(cfg, utils.GetLogger())
	if err != nil {
		return err
	}
	defer stack.Close()
	return fn(stack)
}

func newSlotsCmd() *cobra.Command {
	var start, end string
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Cut a window into 15-minute slots",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := time.Parse(time.RFC3339, start)
			if err != nil {
				return fmt.Errorf("invalid --start: %w", err)
			}
			e, err := time.Parse(time.RFC3339, end)
			if err != nil {
				return fmt.Errorf("invalid --end: %w", err)
			}
			w, err := models.NewTimeWindow(s, e)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tSTART\tEND")
			for i, slot := range negotiation.Subdivide(w) {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", i, slot.Start.Format(time.RFC3339), slot.End.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&start, "start", "", "Window start (RFC 3339)")
	cmd.Flags().StringVar(&end, "end", "", "Window end (RFC 3339)")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

// parseWindow reads a "start,end" pair of RFC 3339 times.
func parseWindow(s string) (models.TimeWindow, error) {
	startRaw, endRaw, ok := strings.Cut(s, ",")
	if !ok {
		return models.TimeWindow{}, fmt.Errorf("window %q must be start,end", s)
	}
	start, err := time.Parse(time.RFC3339, strings.TrimSpace(startRaw))
	if err != nil {
		return models.TimeWindow{}, fmt.Errorf("window %q: invalid start: %w", s, err)
	}
	end, err := time.Parse(time.RFC3339, strings.TrimSpace(endRaw))
	if err != nil {
		return models.TimeWindow{}, fmt.Errorf("window %q: invalid end: %w", s, err)
	}
	w, err := models.NewTimeWindow(start, end)
	if err != nil {
		return models.TimeWindow{}, fmt.Errorf("window %q: %w", s, err)
	}
	return w, nil
}

func newWindowsCmd() *cobra.Command {
	var add []string
	var remove []int
	cmd := &cobra.Command{
		Use:   "windows",
		Short: "Compose an availability_slots list for a request body",
		Long: `windows builds the availability list in the order the windows are added,
then drops the windows at the --remove indexes of that list.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var ws []models.TimeWindow
			for _, raw := range add {
				w, err := parseWindow(raw)
				if err != nil {
					return err
				}
				ws = models.AppendWindow(ws, w)
			}
			drop := append([]int(nil), remove...)
			sort.Sort(sort.Reverse(sort.IntSlice(drop)))
			for i, idx := range drop {
				if idx < 0 || idx >= len(ws) {
					return fmt.Errorf("--remove %d is out of range", idx)
				}
				if i > 0 && drop[i-1] == idx {
					continue
				}
				ws = models.RemoveWindow(ws, idx)
			}
			if ws == nil {
				ws = []models.TimeWindow{}
			}
			return writeJSON(cmd.OutOrStdout(), map[string][]models.TimeWindow{"availability_slots": ws})
		},
	}
	cmd.Flags().StringArrayVar(&add, "add", nil, "Window as start,end in RFC 3339 (repeatable)")
	cmd.Flags().IntSliceVar(&remove, "remove", nil, "Index of a window to drop")
	return cmd
}

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify status...",
		Short: "Show how raw statuses map to meeting and inbox buckets",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RAW\tMEETING\tINBOX")
			for _, raw := range args {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", raw, negotiation.Classify(raw), negotiation.ClassifyInbox(raw))
			}
			return tw.Flush()
		},
	}
}

func newMeetingsCmd() *cobra.Command {
	var as string
	cmd := &cobra.Command{
		Use:   "meetings",
		Short: "List a user's meetings grouped by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStack(func(s *services.Stack) error {
				list, err := s.Orchestrator.ListMeetings(cmd.Context(), userID, models.Role(as))
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), list)
			})
		},
	}
	cmd.Flags().StringVar(&as, "as", string(models.RoleProfessional), "professional or requester")
	return cmd
}

func newDecideCmd() *cobra.Command {
	var action string
	var window int
	var slotStart string
	cmd := &cobra.Command{
		Use:   "decide meeting-id",
		Short: "Approve or reject a waiting meeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := models.Decision{Action: models.DecisionAction(action)}
			if d.Action == models.ActionApprove {
				start, err := time.Parse(time.RFC3339, slotStart)
				if err != nil {
					return fmt.Errorf("approve needs --slot in RFC 3339: %w", err)
				}
				slot := models.Slot{Start: start, End: start.Add(models.SlotLength)}
				d.WindowIndex = &window
				d.Slot = &slot
			}
			return withStack(func(s *services.Stack) error {
				res, err := s.Orchestrator.Decide(cmd.Context(), userID, args[0], d)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), res)
			})
		},
	}
	cmd.Flags().StringVar(&action, "action", "", "approve or reject")
	cmd.Flags().IntVar(&window, "window", 0, "Index of the chosen window (approve only)")
	cmd.Flags().StringVar(&slotStart, "slot", "", "Start of the chosen 15-minute slot (approve only)")
	_ = cmd.MarkFlagRequired("action")
	return cmd
}

func newInboxCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inbox",
		Short: "List a professional's direct requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStack(func(s *services.Stack) error {
				inbox, err := s.Orchestrator.ListInbox(cmd.Context(), userID)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), inbox)
			})
		},
	}
}

func newTokenCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token user-id",
		Short: "Mint a bearer token for the HTTP API using JWT_SECRET",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.GetViper())
			if err != nil {
				return err
			}
			utils.SetJWTSecret(cfg.JWTSecret)
			token, err := utils.GenerateToken(args[0], ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}
