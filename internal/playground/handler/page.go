package handler

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>calcscript playground</title>
<style>
	body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; margin: 2em auto; max-width: 52em; color: #222; }
	h1 { font-size: 1.4em; }
	textarea { width: 100%; height: 14em; font-family: monospace; font-size: 1em; }
	pre { background: #f4f4f4; padding: 1em; min-height: 3em; }
	.error { color: #b00020; }
	.ok { color: #1b5e20; }
	footer { color: #888; font-size: 0.8em; margin-top: 2em; }
</style>
</head>
<body>
<h1>calcscript playground</h1>
<form id="runner">
	<textarea name="code" id="code" spellcheck="false">x = 5
y = x * (2 + 3)
print(y)</textarea>
	<p><button type="submit">Run</button></p>
</form>
<p id="message"></p>
<pre id="output"></pre>
<footer>calcscript {{.Version}}</footer>
<script>
document.getElementById("runner").addEventListener("submit", async (ev) => {
	ev.preventDefault();
	const body = new URLSearchParams({ code: document.getElementById("code").value });
	const resp = await fetch("/run_code", { method: "POST", body: body });
	const data = await resp.json();
	const message = document.getElementById("message");
	message.textContent = data.message;
	message.className = data.success ? "ok" : "error";
	document.getElementById("output").textContent = data.output;
});
</script>
</body>
</html>
`
