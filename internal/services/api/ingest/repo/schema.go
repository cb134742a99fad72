package repo

// Schema is the audit table expected by this repo. The binary applies it at
// startup; it is additive and safe to re-run
const Schema = `
create table if not exists ingest_runs (
  run_id         uuid primary key,
  partner        text not null,
  dataset        text not null,
  table_name     text not null,
  mode           text not null,
  source_type    text not null,
  status         text not null,
  stage          text not null,
  encoding       text not null default '',
  rows_processed integer not null default 0,
  rows_failed    integer not null default 0,
  rows_written   integer not null default 0,
  warnings       text[] not null default '{}',
  error          text not null default '',
  started_at     timestamptz not null,
  finished_at    timestamptz not null
);
create index if not exists ingest_runs_started_at_idx on ingest_runs (started_at desc);
create index if not exists ingest_runs_partner_idx on ingest_runs (partner);
`
