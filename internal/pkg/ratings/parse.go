package ratings

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/Vodeneev/valuebet/internal/pkg/models"
)

// Column positions in the team table (0-based).
const (
	colGamesPlayed = 2
	colXGF         = 22
	colXGA         = 23
)

// ParseTeamTable extracts {team: rating} from the #teams table. Teams with
// fewer than minMatches games are left out; malformed rows are skipped.
func ParseTeamTable(r io.Reader, minMatches int) (models.RatingTable, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse team table: %w", err)
	}

	table := findElement(doc, func(n *html.Node) bool {
		return n.Data == "table" && attr(n, "id") == "teams"
	})
	if table == nil {
		return nil, fmt.Errorf("parse team table: table #teams not found")
	}

	out := make(models.RatingTable)
	for _, tr := range rows(table) {
		cells := children(tr, "td")
		if len(cells) <= colXGA {
			continue
		}
		name := ""
		for _, td := range cells {
			if hasClass(td, "lh") {
				name = strings.TrimSpace(text(td))
				break
			}
		}
		if name == "" {
			continue
		}
		games, err := strconv.Atoi(strings.TrimSpace(text(cells[colGamesPlayed])))
		if err != nil || games < minMatches {
			continue
		}
		xgf, err1 := strconv.ParseFloat(strings.TrimSpace(text(cells[colXGF])), 64)
		xga, err2 := strconv.ParseFloat(strings.TrimSpace(text(cells[colXGA])), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		out[name] = models.TeamRating{GamesPlayed: games, XGF: xgf, XGA: xga}
	}
	return out, nil
}

func rows(table *html.Node) []*html.Node {
	var out []*html.Node
	for c := table.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "tbody" {
			out = append(out, children(c, "tr")...)
		}
	}
	return out
}

func findElement(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, match); found != nil {
			return found
		}
	}
	return nil
}

func children(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			out = append(out, c)
		}
	}
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
