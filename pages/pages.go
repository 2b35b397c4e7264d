package pages

// IndexPage takes the authentication banner and the recent-runs rows.
var IndexPage = `
<!DOCTYPE html>
<html>
<head>
    <title>Playlist Generator</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            line-height: 1.6;
            max-width: 800px;
            margin: 0 auto;
            padding: 20px;
        }
        form {
            border: 1px solid #ccc;
            border-radius: 8px;
            padding: 16px;
            margin-bottom: 20px;
        }
        input[type=text], input[type=url] {
            width: 100%%;
            padding: 6px;
            margin: 4px 0 12px;
        }
        button {
            background: #1db954;
            color: white;
            border: none;
            border-radius: 4px;
            padding: 8px 16px;
            cursor: pointer;
        }
        .banner { color: #b00; }
        table { border-collapse: collapse; width: 100%%; }
        td, th { border: 1px solid #ddd; padding: 6px; text-align: left; }
    </style>
</head>
<body>
    <h1>Playlist Generator</h1>
    <p class="banner">%s</p>

    <h2>Create a playlist</h2>
    <form action="/create" method="post" enctype="multipart/form-data">
        <label>Playlist name</label>
        <input type="text" name="name" placeholder="My Mix" required>
        <label>Song list file (CSV or one song per line)</label>
        <input type="file" name="file">
        <label>...or a YouTube / Apple Music URL</label>
        <input type="url" name="source_url" placeholder="https://www.youtube.com/playlist?list=...">
        <button type="submit">Create</button>
    </form>

    <h2>Remove duplicates</h2>
    <form action="/dedupe" method="post">
        <label>Playlist URL or ID</label>
        <input type="text" name="playlist" placeholder="https://open.spotify.com/playlist/..." required>
        <button type="submit">Deduplicate</button>
    </form>

    <h2>Recent runs</h2>
    <table>
        <tr><th>Kind</th><th>Playlist</th><th>Tracks</th><th>Missing</th><th>Removed</th><th>When</th></tr>
        %s
    </table>
</body>
</html>`

// ResultPage takes the page title and the pre-escaped log lines.
var ResultPage = `
<!DOCTYPE html>
<html>
<head>
    <title>%s</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            line-height: 1.6;
            max-width: 800px;
            margin: 0 auto;
            padding: 20px;
        }
        pre {
            background: #f6f6f6;
            border-radius: 8px;
            padding: 16px;
            white-space: pre-wrap;
            word-wrap: break-word;
        }
    </style>
</head>
<body>
    <h1>%s</h1>
    <pre>%s</pre>
    <p><a href="/">&larr; Back</a></p>
</body>
</html>`
