package sdkerr

// InstallInstructions returns the manual installation hints for goos.
// Unknown platforms get the Linux text.
func InstallInstructions(goos string) string {
	switch goos {
	case "windows":
		return `Install OpenCode using one of these methods:
  1. npm:      npm install -g opencode-ai
  2. pnpm:     pnpm add -g opencode-ai
  3. Download: https://opencode.ai/install`
	case "darwin":
		return `Install OpenCode using one of these methods:
  1. Homebrew: brew install opencode-ai/tap/opencode
  2. npm:      npm install -g opencode-ai
  3. curl:     curl -fsSL https://opencode.ai/install | bash`
	default:
		return `Install OpenCode using one of these methods:
  1. npm:      npm install -g opencode-ai
  2. curl:     curl -fsSL https://opencode.ai/install | bash
  3. Download: https://opencode.ai/install`
	}
}
