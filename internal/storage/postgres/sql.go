package postgres

const createTableSQL = `
CREATE TABLE IF NOT EXISTS traces (
    id text PRIMARY KEY,
    time timestamp WITH TIME ZONE NOT NULL,
    modelname text NULL,
    sourcedepth float8 NULL,
    angle float8 NULL,
    status text NULL,
    vertexcount int NULL,
    vertices jsonb NULL
);
CREATE INDEX IF NOT EXISTS traces_time_idx ON traces (time DESC);
CREATE INDEX IF NOT EXISTS traces_modelname_idx ON traces (modelname);
`
