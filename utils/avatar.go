package utils

import (
	"fmt"
	"hash/fnv"
	"net/url"
	"strings"
)

// avatarColors are the available avatar background colors
var avatarColors = []string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFEAA7",
	"#DDA0DD", "#98D8C8", "#F7DC6F", "#BB8FCE", "#85C1E9",
	"#F8C471", "#82E0AA", "#F1948A", "#D7BDE2", "#A9DFBF",
}

// AvatarForUsername generates an avatar URL using the DiceBear initials
// style. The same username always gets the same avatar, so the image shown
// beside a user's reviews is stable.
func AvatarForUsername(username string) string {
	h := fnv.New32a()
	h.Write([]byte(username))
	color := avatarColors[int(h.Sum32())%len(avatarColors)]

	return fmt.Sprintf(
		"https://api.dicebear.com/7.x/initials/svg?seed=%s&backgroundColor=%s",
		url.QueryEscape(username),
		strings.TrimPrefix(color, "#"),
	)
}
