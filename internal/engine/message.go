package engine

import (
	"fmt"
	"net/url"

	"github.com/modtools/tubeguard/internal/domain"
)

// removalMessage renders the explanation posted as a reply to a removed
// post.
func removalMessage(post domain.Post) string {
	contact := fmt.Sprintf(
		"https://www.reddit.com/message/compose?to=%%2Fr%%2F%s&subject=&message=%s",
		url.QueryEscape(post.Subreddit), url.QueryEscape(post.Permalink))

	return fmt.Sprintf(`This post is removed due to a high rate of self promoted
links. Your account may be suspended at some point by the
reddit admins if more than 10%% of your content is pulled
from a single source.

https://www.reddit.com/wiki/selfpromotion

"You should submit from a variety of sources (a general
rule of thumb is that 10%% or less of your posting and
conversation should link to your own content), talk to
people in the comments (and not just on your own links)."

https://www.reddit.com/wiki/faq#wiki_what_constitutes_spam.3F

This is an automated response due to a high rate of self
promoted links posted from your account.

Please [contact the moderators](%s) if you have questions.
`, contact)
}
