/*
Package completion keeps the Lua completion data the host hands to the editor.

The Store holds plain values (globals, library functions, enums), class
methods keyed by their short name, module table names, and snippets. Data
arrives in three shapes:

  - LoadClientData: the pipe-separated name lists the game client dumps
  - AddValue / LoadState: structured items, usually a previously saved State
  - Feed: a JSON document in the wiki scraper layout fetched over HTTP

Ranking and presentation are left to the editor widget.
*/
package completion
