// Package command drives an external command-line HTTP client.
//
// A request goes through three steps:
//
//	tpl, err := resolver.Resolve(command.KindPOST) // override or built-in curl template
//	cmd, err := command.Format(tpl, url, body, 0) // substitute %u and %p
//	buf, err := runner.Run(ctx, cmd)              // execute, capture stdout
//
// Templates use two placeholders: %u for the request URL (with the query
// appended for GET) and %p for the POST body. Overrides come from the
// OAUTH_HTTP_GET_CMD and OAUTH_HTTP_CMD variables:
//
//	OAUTH_HTTP_CMD="wget -q -O - -U 'my-agent' --post-data='%p' '%u'"
//
// Templates are split into arguments with shell quoting rules but are never run
// through a shell, so pipes, redirects and other shell operators are rejected and
// substituted values cannot inject commands.
package command
