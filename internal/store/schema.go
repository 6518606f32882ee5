package store

const schema = `
CREATE TABLE IF NOT EXISTS keywords (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    word TEXT NOT NULL,
    slot INTEGER NOT NULL UNIQUE,
    blockhash TEXT NOT NULL,
    block_time INTEGER,
    word_index INTEGER NOT NULL,
    created_at DATETIME DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_keywords_created ON keywords(created_at);

CREATE TABLE IF NOT EXISTS poems (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    date TEXT NOT NULL UNIQUE,
    title TEXT,
    content TEXT NOT NULL,
    keyword_ids TEXT NOT NULL,
    created_at DATETIME DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_poems_date ON poems(date);
`
