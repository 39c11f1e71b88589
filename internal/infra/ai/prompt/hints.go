package prompt

import "regexp"

// detectors flag Solidity constructs worth pointing a model at.
var detectors = []struct {
	re   *regexp.Regexp
	hint string
}{
	{regexp.MustCompile(`\bselfdestruct\s*\(|\bsuicide\s*\(`), "selfdestruct can remove the contract and sweep its balance"},
	{regexp.MustCompile(`\.delegatecall\s*\(`), "delegatecall executes foreign code in this contract's storage context"},
	{regexp.MustCompile(`\btx\.origin\b`), "tx.origin used, possibly for authorization"},
	{regexp.MustCompile(`\.call\s*\{\s*value\s*:`), "low-level call transferring ether"},
	{regexp.MustCompile(`\bonlyOwner\b|\bOwnable\b`), "owner-restricted functions"},
	{regexp.MustCompile(`\b(?:_pause|whenNotPaused|Pausable)\b`), "pausable transfers"},
	{regexp.MustCompile(`\b(?:upgradeTo|UUPSUpgradeable|TransparentUpgradeableProxy|_implementation)\b`), "upgradeable proxy pattern"},
	{regexp.MustCompile(`\bfunction\s+mint\s*\(`), "mint function"},
	{regexp.MustCompile(`\b(?:blacklist|blocklist|isBlacklisted)\b`), "address blacklist"},
	{regexp.MustCompile(`\bblock\.timestamp\b`), "logic depends on block.timestamp"},
}

// Hints returns the hint of every detector matching the source, in
// detector order.
func Hints(source string) []string {
	var out []string
	for _, d := range detectors {
		if d.re.MatchString(source) {
			out = append(out, d.hint)
		}
	}
	return out
}
