package feature

import (
	"context"
	"fmt"
)

const (
	AIInstructionsID = "aiInstructions"
	AIClaudeID       = "aiClaude"

	copilotInstructions = ".github/copilot-instructions.md"
	instructionsDir     = ".github/instructions"
	cursorRulesDir      = ".cursor/rules"
	gitignoreFile       = ".gitignore"
)

var aiInstructionFiles = []string{copilotInstructions, instructionsDir, cursorRulesDir}

var claudeFiles = []string{"CLAUDE.md", ".claude/memory.md", ".claude/settings.json", ".claude/handoff.md"}

// The session directory stays private except for shared settings.
var claudeGitignore = []string{".claude/*", "!.claude/settings.json"}

// AIInstructions adds Copilot and Cursor instruction files.
func AIInstructions() Feature {
	return Feature{
		ID:    AIInstructionsID,
		Label: "AI instructions",
		Hint:  "Copilot and Cursor rules",
		Owns:  []string{copilotInstructions, instructionsDir, ".cursor"},
		Detect: func(_ context.Context, fc *Context) (bool, error) {
			return allExist(fc, aiInstructionFiles...), nil
		},
		Apply: applyAIInstructions,
	}
}

func applyAIInstructions(ctx context.Context, fc *Context) (Result, error) {
	var res Result
	for _, rel := range aiInstructionFiles {
		wrote, err := ensureTemplate(ctx, fc, packageTemplate(rel), rel)
		if err != nil {
			return res, err
		}
		if wrote {
			res.add(rel)
		}
	}
	return res.finish("AI instructions already present. No changes made."), nil
}

// AIClaude adds Claude session files. It needs the shared instructions
// and applies AIInstructions first when they are missing.
func AIClaude() Feature {
	return Feature{
		ID:    AIClaudeID,
		Label: "Claude session support",
		Hint:  "CLAUDE.md and .claude/",
		Owns:  []string{"CLAUDE.md", ".claude"},
		Detect: func(_ context.Context, fc *Context) (bool, error) {
			return allExist(fc, claudeFiles...), nil
		},
		Apply: applyAIClaude,
	}
}

func applyAIClaude(ctx context.Context, fc *Context) (Result, error) {
	var res Result

	if !exists(fc.path(instructionsDir)) {
		dep, err := applyAIInstructions(ctx, fc)
		res.add(dep.Applied...)
		if err != nil {
			return res, fmt.Errorf("%s: %w", AIInstructionsID, err)
		}
	}

	for _, rel := range claudeFiles {
		wrote, err := ensureTemplate(ctx, fc, packageTemplate(rel), rel)
		if err != nil {
			return res, err
		}
		if wrote {
			res.add(rel)
		}
	}

	lines, err := ensureLines(fc.path(gitignoreFile), claudeGitignore...)
	if err != nil {
		return res, err
	}
	if len(lines) > 0 {
		res.add(gitignoreFile + " (Claude entries)")
	}

	return res.finish("Claude session files already present. No changes made."), nil
}
