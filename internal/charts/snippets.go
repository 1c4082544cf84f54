package charts

import (
	"fmt"
	"regexp"
)

// ChartSnippet represents an embeddable echarts chart fragment.
// Div contains the single root <div id="..."> the chart is drawn into.
// Script contains the <script> block that initializes the chart on page-ready
// and binds the window resize handler.
// HTML is Div and Script combined for template substitution.
type ChartSnippet struct {
	ID     string
	Title  string
	Div    string
	Script string
	HTML   string
}

// elementID restricts containers to names that are safe both as HTML ids and
// inside the single-quoted JS string of the init script.
var elementID = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

func validElementID(id string) bool {
	return elementID.MatchString(id)
}

// snippetDiv returns the container element sized for the viewport. Width
// follows the page; the viewport width caps it.
func snippetDiv(id string, vp Viewport) string {
	return fmt.Sprintf(`<div id="%s" class="issue-chart" style="width:100%%;max-width:%dpx;height:%dpx;"></div>`,
		id, vp.Width, vp.Height)
}

// snippetScript initializes the chart once the page is ready. On every window
// resize the chart is reset completely: resized, cleared and given its option
// again without merging, so no stale scale or extent survives.
func snippetScript(id string, optJSON []byte) string {
	return fmt.Sprintf(`<script>(function(){function ready(){var el=document.getElementById('%s');if(!el)return;var c=echarts.init(el);var option=%s;c.setOption(option);window.addEventListener('resize',function(){c.resize();c.clear();c.setOption(option,true);});}if(document.readyState==='loading'){document.addEventListener('DOMContentLoaded',ready);}else{ready();}})();</script>`,
		id, string(optJSON))
}
