package sandbox

import (
	"fmt"
	"strings"

	"github.com/sandpen/sandpen-backend/internal/bundle"
)

// hostBinding is the function name the harness prefers for posting
// relay messages to the host. When the document runs outside a host
// page (plain iframe embedding) it falls back to parent.postMessage.
const hostBinding = "sandpenPost"

// harness is injected ahead of user code. It wraps console.log and
// re-posts pointer events so user code is observed transparently, and
// it must run to completion before any user statement executes.
const harness = `var post = function(msg){
  try {
    if (typeof window.%[1]s === "function") {
      window.%[1]s(JSON.stringify(msg));
    } else if (window.parent && window.parent !== window) {
      window.parent.postMessage(msg, "*");
    }
  } catch (e) {}
};
var origLog = console.log;
console.log = function(){
  var parts = Array.prototype.slice.call(arguments).map(String);
  post({type: "console", message: parts.join(" ")});
  origLog.apply(console, arguments);
};
document.addEventListener("mousemove", function(e){
  post({type: "mousemove", event: {clientX: e.clientX, clientY: e.clientY}});
});
document.addEventListener("mouseup", function(e){
  post({type: "mouseup", event: {clientX: e.clientX, clientY: e.clientY}});
});`

// ComposeDocument builds the runnable preview document: styles in the
// head, markup in the body, and the user script inside an immediately
// invoked wrapper that installs the console and pointer relays first.
// User content is embedded verbatim; isolation comes from where the
// document runs, not from escaping.
func ComposeDocument(projectID string, f bundle.Files) string {
	var sb strings.Builder

	sb.WriteString("<!doctype html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	if f.Styles != "" {
		sb.WriteString("<style>\n")
		sb.WriteString(f.Styles)
		sb.WriteString("\n</style>\n")
	}
	sb.WriteString("</head>\n<body>\n")
	sb.WriteString(f.Markup)
	sb.WriteString("\n<script>\n(function(){\n")
	fmt.Fprintf(&sb, "var projectId = %q;\n", projectID)
	fmt.Fprintf(&sb, harness, hostBinding)
	sb.WriteString("\n")
	sb.WriteString(f.Script)
	sb.WriteString("\n}).call(window);\n</script>\n</body>\n</html>\n")

	return sb.String()
}
