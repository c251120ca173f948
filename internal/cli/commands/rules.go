package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/tablook/internal/cli/output"
	"github.com/leapstack-labs/tablook/internal/qa"
)

// RulesOptions holds options for the rules command.
type RulesOptions struct {
	Group string // Filter by group
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	opts := &RulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [rule-id]",
		Short: "List the QA rules",
		Long: `List the rules behind the QA report with their default severity.

Rules are organized by group (connection, join, field, calculation, sheet).
Severities can be overridden and rules disabled in the qa section of
tablook.yaml.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # List all rules
  tablook rules

  # Show one rule
  tablook rules QJ01

  # List the join rules
  tablook rules --group join

  # Output as JSON
  tablook rules -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return showRule(cmd, args[0])
			}
			return listRules(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Group, "group", "g", "", "Filter by group")

	return cmd
}

// RuleInfo is the listing form of a rule.
type RuleInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Group       string `json:"group"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Disabled    bool   `json:"disabled,omitempty"`
}

// RulesJSONOutput is the JSON output structure for rules listing.
type RulesJSONOutput struct {
	Rules []RuleInfo `json:"rules"`
	Count int        `json:"count"`
}

// ruleInfos applies the configured overrides to the registered rules.
func ruleInfos(cmdCtx *CommandContext, group string) ([]RuleInfo, error) {
	qaCfg, err := cmdCtx.Cfg.QA.AnalyzerConfig()
	if err != nil {
		return nil, err
	}
	var rules []qa.RuleDef
	if group != "" {
		rules = qa.GetByGroup(group)
	} else {
		rules = qa.GetAll()
	}

	infos := make([]RuleInfo, 0, len(rules))
	for _, rule := range rules {
		sev := rule.Severity
		if o, ok := qaCfg.SeverityOverrides[rule.ID]; ok {
			sev = o
		}
		infos = append(infos, RuleInfo{
			ID:          rule.ID,
			Name:        rule.Name,
			Group:       rule.Group,
			Description: rule.Description,
			Severity:    sev.String(),
			Disabled:    qaCfg.DisabledRules[rule.ID],
		})
	}
	return infos, nil
}

func listRules(cmd *cobra.Command, opts *RulesOptions) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)
	r := cmdCtx.Renderer

	rules, err := ruleInfos(cmdCtx, opts.Group)
	if err != nil {
		return err
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(RulesJSONOutput{Rules: rules, Count: len(rules)})
	case output.ModeMarkdown:
		listRulesMarkdown(r, rules)
	default:
		listRulesText(r, rules)
	}
	return nil
}

func showRule(cmd *cobra.Command, ruleID string) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)
	r := cmdCtx.Renderer

	rules, err := ruleInfos(cmdCtx, "")
	if err != nil {
		return err
	}
	var rule *RuleInfo
	for i := range rules {
		if strings.EqualFold(rules[i].ID, ruleID) {
			rule = &rules[i]
			break
		}
	}
	if rule == nil {
		return fmt.Errorf("rule %q not found", ruleID)
	}

	switch r.EffectiveMode() {
	case output.ModeJSON:
		return r.JSON(rule)
	case output.ModeMarkdown:
		r.Printf("# %s - %s\n\n", rule.ID, rule.Name)
		r.Printf("**Group:** %s | **Severity:** `%s`\n\n", rule.Group, rule.Severity)
		r.Println(rule.Description)
		if rule.Disabled {
			r.Println("")
			r.Println("_Disabled in configuration._")
		}
	default:
		styles := r.Styles()
		r.Println(styles.Header1.Render(fmt.Sprintf("%s - %s", rule.ID, rule.Name)))
		r.Println("")
		r.Printf("  %s: %s\n", styles.Bold.Render("Group"), rule.Group)
		r.Printf("  %s: %s\n", styles.Bold.Render("Severity"), rule.Severity)
		if rule.Disabled {
			r.Printf("  %s: %s\n", styles.Bold.Render("Status"), "disabled")
		}
		r.Println("")
		r.Println("  " + rule.Description)
	}
	return nil
}

// listRulesText outputs rules in styled text format.
func listRulesText(r *output.Renderer, rules []RuleInfo) {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Header1.Render(fmt.Sprintf("QA Rules (%d)", len(rules))))
	r.Println("")

	currentGroup := ""
	for _, rule := range rules {
		if rule.Group != currentGroup {
			currentGroup = rule.Group
			r.Println(styles.Bold.Render("  " + output.Title(currentGroup)))
		}
		line := fmt.Sprintf("    %s  %s - %s",
			styles.Muted.Render(rule.ID), rule.Name, styles.Muted.Render(rule.Severity))
		if rule.Disabled {
			line += styles.Muted.Render(" (disabled)")
		}
		r.Println(line)
	}

	r.Println("")
	r.Println(styles.Muted.Render("Use 'tablook rules <rule-id>' for details"))
}

// listRulesMarkdown outputs rules in markdown format.
func listRulesMarkdown(r *output.Renderer, rules []RuleInfo) {
	r.Println("# QA Rules")
	r.Println("")

	currentGroup := ""
	for _, rule := range rules {
		if rule.Group != currentGroup {
			currentGroup = rule.Group
			r.Println("")
			r.Println("## " + output.Title(currentGroup))
			r.Println("")
		}
		suffix := ""
		if rule.Disabled {
			suffix = " _disabled_"
		}
		r.Printf("- **%s** - %s (`%s`)%s\n", rule.ID, rule.Name, rule.Severity, suffix)
	}
}
