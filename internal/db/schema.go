package db

// SchemaSQL contains the database schema initialization SQL.
const SchemaSQL = `
    -- ==========================================================================
    -- JOB TABLE (one document per extraction request)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS job SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS owner_id ON job TYPE string;
    DEFINE FIELD IF NOT EXISTS content ON job TYPE string;
    DEFINE FIELD IF NOT EXISTS target_collection_id ON job TYPE string;
    DEFINE FIELD IF NOT EXISTS mode ON job TYPE string DEFAULT "standard";
    DEFINE FIELD IF NOT EXISTS status ON job TYPE string DEFAULT "pending";
    DEFINE FIELD IF NOT EXISTS progress ON job TYPE float DEFAULT 0.0;
    DEFINE FIELD IF NOT EXISTS message ON job TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS error ON job TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS total_cards ON job TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS saved_count ON job TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS cards ON job FLEXIBLE TYPE option<array>;
    DEFINE FIELD IF NOT EXISTS started_at ON job TYPE option<datetime>;
    DEFINE FIELD IF NOT EXISTS completed_at ON job TYPE option<datetime>;
    DEFINE FIELD IF NOT EXISTS created_at ON job TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS job_owner ON job FIELDS owner_id;
    DEFINE INDEX IF NOT EXISTS job_status ON job FIELDS status;

    -- ==========================================================================
    -- CARD TABLE (owner's personal collection)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS card SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS owner_id ON card TYPE string;
    DEFINE FIELD IF NOT EXISTS collection_id ON card TYPE string;
    DEFINE FIELD IF NOT EXISTS source_job_id ON card TYPE string;
    DEFINE FIELD IF NOT EXISTS auto_saved ON card TYPE bool DEFAULT false;
    DEFINE FIELD IF NOT EXISTS title ON card TYPE string;
    DEFINE FIELD IF NOT EXISTS category ON card TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS difficulty ON card TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS body ON card TYPE string;
    DEFINE FIELD IF NOT EXISTS flashcard ON card FLEXIBLE TYPE object;
    DEFINE FIELD IF NOT EXISTS presentation ON card FLEXIBLE TYPE object;
    DEFINE FIELD IF NOT EXISTS is_custom_generated ON card TYPE bool DEFAULT true;
    DEFINE FIELD IF NOT EXISTS created_at ON card TYPE datetime;

    DEFINE INDEX IF NOT EXISTS card_owner ON card FIELDS owner_id;
    DEFINE INDEX IF NOT EXISTS card_collection ON card FIELDS collection_id;
    DEFINE INDEX IF NOT EXISTS card_source_job ON card FIELDS source_job_id;

    -- ==========================================================================
    -- SHARE TABLE (engagement counters)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS share SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS owner_id ON share TYPE string;
    DEFINE FIELD IF NOT EXISTS clicks ON share TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS views ON share TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS saves ON share TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS likes ON share TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS liked_by ON share TYPE array<string> DEFAULT [];
    DEFINE FIELD IF NOT EXISTS saved_by ON share TYPE array<string> DEFAULT [];

    -- ==========================================================================
    -- CHECKIN TABLE (daily check-in claims, one per user per calendar date)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS checkin SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS user_id ON checkin TYPE string;
    DEFINE FIELD IF NOT EXISTS date ON checkin TYPE string;
    DEFINE FIELD IF NOT EXISTS streak ON checkin TYPE int DEFAULT 1;
    DEFINE FIELD IF NOT EXISTS claimed_at ON checkin TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS checkin_user_date ON checkin FIELDS user_id, date UNIQUE;

    -- ==========================================================================
    -- USER TABLE (credential fields for the password-reset flow)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS user SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS security_question ON user TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS answer_hash ON user TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS password_hash ON user TYPE option<string>;
`
