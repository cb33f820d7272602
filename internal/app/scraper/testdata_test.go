package scraper

import "fmt"

// schedulePage renders a registrar-like page around a preformatted body.
func schedulePage(heading, columnHeader, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><title>Exam Schedule</title></head>
<body>
<div class="content">
  <div>
    <h2>%s</h2>
    <pre><strong>%s</strong>
%s
</pre>
  </div>
</div>
</body>
</html>`, heading, columnHeader, body)
}
