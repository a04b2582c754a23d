package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/kamusis/axon-context/internal/match"
	"github.com/spf13/cobra"
)

var (
	flagMatchSkills   int
	flagMatchAgents   int
	flagMatchCommands int
	flagMatchRules    int
	flagMatchJSON     bool
	flagMatchLive     bool
)

var matchCmd = &cobra.Command{
	Use:   "match <request>",
	Short: "Recommend skills, agents, commands and rules for a request",
	Long: `Rank every hub entry against a free-form request and print the
skills, agents, commands and rules worth attaching to it.

Example:
  axon match "build a shopify store with checkout"
  axon match --json --skills 3 "review this pull request"`,
	Args: cobra.ArbitraryArgs,
	RunE: runMatch,
}

func init() {
	matchCmd.Flags().IntVar(&flagMatchSkills, "skills", -1, "Maximum skills to show (-1 = configured limit)")
	matchCmd.Flags().IntVar(&flagMatchAgents, "agents", -1, "Maximum agents to show (-1 = configured limit)")
	matchCmd.Flags().IntVar(&flagMatchCommands, "commands", -1, "Maximum commands to show (-1 = configured limit)")
	matchCmd.Flags().IntVar(&flagMatchRules, "rules", -1, "Maximum rules to show (-1 = configured limit, unlimited by default)")
	matchCmd.Flags().BoolVar(&flagMatchJSON, "json", false, "Print results as JSON")
	matchCmd.Flags().BoolVar(&flagMatchLive, "live", false, "Scan the hub instead of using the registry cache")
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	engine, err := loadEngine(cfg, log, flagMatchLive)
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	res, err := engine.All(commandContext(cmd), query, match.Limits{
		Skills:   flagMatchSkills,
		Agents:   flagMatchAgents,
		Commands: flagMatchCommands,
		Rules:    flagMatchRules,
	})
	if err != nil {
		return err
	}

	if flagMatchJSON {
		return writeMatchJSON(cmd.OutOrStdout(), res)
	}
	printMatchResults(cmd.OutOrStdout(), res)
	return nil
}

// matchItem is the JSON shape of one ranked entry.
type matchItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Path        string  `json:"path,omitempty"`
	Score       float64 `json:"score"`
	MatchType   string  `json:"match_type"`
}

type matchOutput struct {
	Query    string      `json:"query"`
	Skills   []matchItem `json:"skills"`
	Agents   []matchItem `json:"agents"`
	Commands []matchItem `json:"commands"`
	Rules    []matchItem `json:"rules"`
}

func toItems(ms []match.ScoredMatch) []matchItem {
	out := make([]matchItem, 0, len(ms))
	for _, m := range ms {
		b := m.Entry.Common()
		out = append(out, matchItem{
			ID:          b.ID,
			Name:        b.Name,
			Description: b.Description,
			Path:        b.Path,
			Score:       m.Score,
			MatchType:   string(m.MatchType),
		})
	}
	return out
}

func writeMatchJSON(w io.Writer, res *match.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(matchOutput{
		Query:    res.Query,
		Skills:   toItems(res.Skills),
		Agents:   toItems(res.Agents),
		Commands: toItems(res.Commands),
		Rules:    toItems(res.Rules),
	})
}

func printMatchResults(w io.Writer, res *match.Result) {
	total := len(res.Skills) + len(res.Agents) + len(res.Commands) + len(res.Rules)
	fmt.Fprintf(w, "\naxon match %q\n\n", res.Query)
	fmt.Fprintf(w, "Results (%d found):\n", total)

	groups := []struct {
		title string
		items []match.ScoredMatch
	}{
		{"skills", res.Skills},
		{"agents", res.Agents},
		{"commands", res.Commands},
		{"rules", res.Rules},
	}
	for _, g := range groups {
		if len(g.items) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s (%d):\n", g.title, len(g.items))

		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for i, m := range g.items {
			marker := ""
			if m.MatchType == match.MatchFuzzy {
				marker = " ~"
			}
			fmt.Fprintf(tw, "  %d.\t[%.3f]%s\t%s\n", i+1, m.Score, marker, m.ID())
			if desc := strings.TrimSpace(m.Entry.Common().Description); desc != "" {
				fmt.Fprintf(tw, "  - %s\n", desc)
			}
		}
		_ = tw.Flush()
	}
}
