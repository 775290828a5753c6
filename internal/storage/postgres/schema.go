package postgres

// schema is applied by Migrate. Statements are idempotent.
// Money columns hold integer cents.
const schema = `
create table if not exists users (
    id text primary key,
    email text not null,
    name text not null,
    password_hash text not null default '',
    created_at bigint not null,
    updated_at bigint not null
);
create unique index if not exists users_email_lower_idx on users (lower(email));

create table if not exists groups (
    id text primary key,
    name text not null,
    description text not null default '',
    created_by text not null references users(id),
    created_at bigint not null
);

create table if not exists group_members (
    group_id text not null references groups(id) on delete cascade,
    user_id text not null references users(id),
    role text not null,
    joined_at bigint not null,
    position int not null,
    primary key (group_id, user_id)
);
create index if not exists group_members_user_id_idx on group_members (user_id);

create table if not exists expenses (
    id text primary key,
    description text not null,
    amount_minor bigint not null,
    category text not null,
    date bigint not null,
    payer_id text not null references users(id),
    split_type text not null,
    group_id text references groups(id),
    created_by text not null references users(id),
    created_at bigint not null
);
create index if not exists expenses_group_id_idx on expenses (group_id);
create index if not exists expenses_payer_id_idx on expenses (payer_id);

create table if not exists expense_splits (
    expense_id text not null references expenses(id) on delete cascade,
    user_id text not null references users(id),
    amount_minor bigint not null,
    paid boolean not null default false,
    position int not null,
    primary key (expense_id, user_id)
);
create index if not exists expense_splits_user_id_idx on expense_splits (user_id);

create table if not exists settlements (
    id text primary key,
    amount_minor bigint not null,
    note text,
    date bigint not null,
    payer_id text not null references users(id),
    receiver_id text not null references users(id),
    group_id text references groups(id),
    created_by text not null references users(id),
    created_at bigint not null
);
create index if not exists settlements_group_id_idx on settlements (group_id);

create table if not exists settlement_expenses (
    settlement_id text not null references settlements(id) on delete cascade,
    expense_id text not null,
    position int not null,
    primary key (settlement_id, expense_id)
);
create index if not exists settlement_expenses_expense_id_idx on settlement_expenses (expense_id);

create table if not exists balances (
    user_id text primary key references users(id),
    amount_minor bigint not null,
    last_updated bigint not null
);
`
