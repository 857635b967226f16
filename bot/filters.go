package bot

import "regexp"

var inviteRe = regexp.MustCompile(`(?i)(discord\.gg|discord(?:app)?\.com/invite|dsc\.gg)/[a-z0-9-]+`)

// ContainsInvite reports whether a message carries a Discord invite link
func ContainsInvite(content string) bool {
	return inviteRe.MatchString(content)
}
